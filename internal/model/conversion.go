package model

// Conversion holds the legacy points-to-reward factors. At most one row
// exists; it predates tasks carrying their own amount and conversion type.
type Conversion struct {
	ID            int64   `json:"id"`
	MoneyPerPoint float64 `json:"money_per_point"`
	HoursPerPoint float64 `json:"hours_per_point"`
}
