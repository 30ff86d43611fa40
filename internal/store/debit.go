package store

import (
	"database/sql"
	"fmt"

	"github.com/hcardin/mesada/internal/model"
)

type DebitStore struct {
	db *sql.DB
}

func NewDebitStore(db *sql.DB) *DebitStore {
	return &DebitStore{db: db}
}

func scanDebit(scanner interface{ Scan(...any) error }) (*model.Debit, error) {
	var d model.Debit
	var money, hours sql.NullFloat64

	err := scanner.Scan(
		&d.ID, &d.UserID, &d.PointsDeducted, &money, &hours, &d.Reason,
		&d.PerformedByID, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if money.Valid {
		d.MoneyAmount = &money.Float64
	}
	if hours.Valid {
		d.HoursAmount = &hours.Float64
	}
	return &d, nil
}

const debitCols = `id, user_id, points_deducted, money_amount, hours_amount, reason, performed_by_id, created_at`

// Create inserts a debit row. Debits are append-only; there is no update.
func (s *DebitStore) Create(userID int64, points int, money, hours *float64, reason string, performedByID int64) (*model.Debit, error) {
	var m, h sql.NullFloat64
	if money != nil {
		m = sql.NullFloat64{Float64: *money, Valid: true}
	}
	if hours != nil {
		h = sql.NullFloat64{Float64: *hours, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO debits (user_id, points_deducted, money_amount, hours_amount, reason, performed_by_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, points, m, h, reason, performedByID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert debit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *DebitStore) GetByID(id int64) (*model.Debit, error) {
	row := s.db.QueryRow(`SELECT `+debitCols+` FROM debits WHERE id = ?`, id)
	d, err := scanDebit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get debit: %w", err)
	}
	return d, nil
}

// List returns debits newest first, optionally restricted to one target user.
func (s *DebitStore) List(userID *int64) ([]model.Debit, error) {
	var rows *sql.Rows
	var err error
	if userID == nil {
		rows, err = s.db.Query(`SELECT ` + debitCols + ` FROM debits ORDER BY created_at DESC, id DESC`)
	} else {
		rows, err = s.db.Query(`SELECT `+debitCols+` FROM debits WHERE user_id = ? ORDER BY created_at DESC, id DESC`, *userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list debits: %w", err)
	}
	defer rows.Close()

	var debits []model.Debit
	for rows.Next() {
		d, err := scanDebit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debit: %w", err)
		}
		debits = append(debits, *d)
	}
	return debits, rows.Err()
}

// Delete removes the debit and reports whether a row was actually deleted.
func (s *DebitStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM debits WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete debit: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
