// Package ledger derives user balances from validated tasks and debits.
// Balances are never stored; every report re-aggregates the underlying rows.
package ledger

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/hcardin/mesada/internal/model"
	"github.com/hcardin/mesada/internal/store"
)

type Calculator struct {
	db    *sql.DB
	users *store.UserStore
}

func NewCalculator(db *sql.DB, users *store.UserStore) *Calculator {
	return &Calculator{db: db, users: users}
}

// Report returns one row per user: validated earnings minus debits, split by
// conversion type. Users with no tasks and no debits report zeros. Negative
// balances are not clamped here; whether debits may exceed earnings is the
// debit creation policy's concern.
func (c *Calculator) Report() ([]model.BalanceReport, error) {
	users, err := c.users.List()
	if err != nil {
		return nil, err
	}

	earnedMoney, err := c.sumByUser(
		`SELECT child_id, SUM(amount) FROM tasks WHERE validated = 1 AND conversion_type = 'money' GROUP BY child_id`)
	if err != nil {
		return nil, fmt.Errorf("sum earned money: %w", err)
	}
	earnedHours, err := c.sumByUser(
		`SELECT child_id, SUM(amount) FROM tasks WHERE validated = 1 AND conversion_type = 'hours' GROUP BY child_id`)
	if err != nil {
		return nil, fmt.Errorf("sum earned hours: %w", err)
	}
	debitedMoney, err := c.sumByUser(
		`SELECT user_id, SUM(money_amount) FROM debits GROUP BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("sum debited money: %w", err)
	}
	debitedHours, err := c.sumByUser(
		`SELECT user_id, SUM(hours_amount) FROM debits GROUP BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("sum debited hours: %w", err)
	}

	report := make([]model.BalanceReport, 0, len(users))
	for _, u := range users {
		r := model.BalanceReport{
			User:         u,
			EarnedMoney:  earnedMoney[u.ID],
			EarnedHours:  earnedHours[u.ID],
			DebitedMoney: debitedMoney[u.ID],
			DebitedHours: debitedHours[u.ID],
		}
		r.BalanceMoney = round2(r.EarnedMoney - r.DebitedMoney)
		r.BalanceHours = round2(r.EarnedHours - r.DebitedHours)
		report = append(report, r)
	}
	return report, nil
}

// Balance computes the report row for a single user. A user with no rows at
// all still gets a zeroed entry, not an error.
func (c *Calculator) Balance(userID int64) (*model.BalanceReport, error) {
	u, err := c.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	r := model.BalanceReport{User: *u}

	err = c.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM tasks WHERE validated = 1 AND conversion_type = 'money' AND child_id = ?`,
		userID,
	).Scan(&r.EarnedMoney)
	if err != nil {
		return nil, fmt.Errorf("sum earned money: %w", err)
	}
	err = c.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM tasks WHERE validated = 1 AND conversion_type = 'hours' AND child_id = ?`,
		userID,
	).Scan(&r.EarnedHours)
	if err != nil {
		return nil, fmt.Errorf("sum earned hours: %w", err)
	}
	err = c.db.QueryRow(
		`SELECT COALESCE(SUM(money_amount), 0) FROM debits WHERE user_id = ?`,
		userID,
	).Scan(&r.DebitedMoney)
	if err != nil {
		return nil, fmt.Errorf("sum debited money: %w", err)
	}
	err = c.db.QueryRow(
		`SELECT COALESCE(SUM(hours_amount), 0) FROM debits WHERE user_id = ?`,
		userID,
	).Scan(&r.DebitedHours)
	if err != nil {
		return nil, fmt.Errorf("sum debited hours: %w", err)
	}

	r.BalanceMoney = round2(r.EarnedMoney - r.DebitedMoney)
	r.BalanceHours = round2(r.EarnedHours - r.DebitedHours)
	return &r, nil
}

// sumByUser runs an aggregate query returning (user id, total) pairs. NULL
// totals (all-NULL amount columns) count as zero.
func (c *Calculator) sumByUser(query string) (map[int64]float64, error) {
	rows, err := c.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var total sql.NullFloat64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		sums[id] = total.Float64
	}
	return sums, rows.Err()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
