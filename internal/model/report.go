package model

// BalanceReport is one user's row in the ledger report: validated earnings
// minus debits, split by conversion type.
type BalanceReport struct {
	User         User    `json:"user"`
	EarnedMoney  float64 `json:"earned_money"`
	EarnedHours  float64 `json:"earned_hours"`
	DebitedMoney float64 `json:"debited_money"`
	DebitedHours float64 `json:"debited_hours"`
	BalanceMoney float64 `json:"balance_money"`
	BalanceHours float64 `json:"balance_hours"`
}
