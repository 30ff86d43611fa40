package model

import "time"

// ConversionType says what unit a task's amount is denominated in.
type ConversionType string

const (
	ConversionMoney ConversionType = "money"
	ConversionHours ConversionType = "hours"
)

// ValidConversionType reports whether s names a known conversion type.
func ValidConversionType(s string) bool {
	switch ConversionType(s) {
	case ConversionMoney, ConversionHours:
		return true
	}
	return false
}

// Task is a claimed unit of work. It is Pending until a validator approves
// it; ValidatorID and ValidatedAt are always set together, exactly once.
type Task struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Amount         float64        `json:"amount"`
	ConversionType ConversionType `json:"conversion_type"`
	ChildID        int64          `json:"child_id"`
	SubmittedByID  int64          `json:"submitted_by_id"`
	ValidatorID    *int64         `json:"validator_id"`
	Validated      bool           `json:"validated"`
	CreatedAt      time.Time      `json:"created_at"`
	ValidatedAt    *time.Time     `json:"validated_at"`
}
