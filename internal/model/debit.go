package model

import "time"

// Debit is a manual deduction against a user's balance. Debits are never
// updated; deletion is the only retraction.
type Debit struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	PointsDeducted int       `json:"points_deducted"`
	MoneyAmount    *float64  `json:"money_amount"`
	HoursAmount    *float64  `json:"hours_amount"`
	Reason         string    `json:"reason"`
	PerformedByID  int64     `json:"performed_by_id"`
	CreatedAt      time.Time `json:"created_at"`
}
