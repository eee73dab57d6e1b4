package models

import "time"

// Leave request statuses. A request starts PENDING and is moved exactly once
// to APPROVED or REJECTED by an HR/Admin reviewer.
const (
	LeaveStatusPending  = "PENDING"
	LeaveStatusApproved = "APPROVED"
	LeaveStatusRejected = "REJECTED"
)

// Leave is an employee leave request reviewed by HR/Admin.
type Leave struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	FromDate   time.Time `json:"from" db:"from_date"`
	ToDate     time.Time `json:"to" db:"to_date"`
	Reason     string    `json:"reason" db:"reason"`
	Status     string    `json:"status" db:"status"`
	ReviewedBy *int64    `json:"reviewed_by,omitempty" db:"reviewed_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
