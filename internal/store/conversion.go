package store

import (
	"database/sql"
	"fmt"

	"github.com/hcardin/mesada/internal/model"
)

// Default factors for the legacy points scheme, applied when no row exists.
const (
	defaultMoneyPerPoint = 0.5
	defaultHoursPerPoint = 0.1
)

type ConversionStore struct {
	db *sql.DB
}

func NewConversionStore(db *sql.DB) *ConversionStore {
	return &ConversionStore{db: db}
}

func scanConversion(scanner interface{ Scan(...any) error }) (*model.Conversion, error) {
	var c model.Conversion
	if err := scanner.Scan(&c.ID, &c.MoneyPerPoint, &c.HoursPerPoint); err != nil {
		return nil, err
	}
	return &c, nil
}

const conversionCols = `id, money_per_point, hours_per_point`

// Get returns the singleton conversion row, inserting the defaults first if
// the table is empty.
func (s *ConversionStore) Get() (*model.Conversion, error) {
	row := s.db.QueryRow(`SELECT ` + conversionCols + ` FROM conversions ORDER BY id LIMIT 1`)
	c, err := scanConversion(row)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get conversion: %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO conversions (money_per_point, hours_per_point) VALUES (?, ?)`,
		defaultMoneyPerPoint, defaultHoursPerPoint,
	); err != nil {
		return nil, fmt.Errorf("insert default conversion: %w", err)
	}
	row = s.db.QueryRow(`SELECT ` + conversionCols + ` FROM conversions ORDER BY id LIMIT 1`)
	c, err = scanConversion(row)
	if err != nil {
		return nil, fmt.Errorf("get conversion after insert: %w", err)
	}
	return c, nil
}

// Set updates the singleton row, creating it if necessary.
func (s *ConversionStore) Set(moneyPerPoint, hoursPerPoint float64) (*model.Conversion, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM conversions ORDER BY id LIMIT 1`).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(
			`INSERT INTO conversions (money_per_point, hours_per_point) VALUES (?, ?)`,
			moneyPerPoint, hoursPerPoint,
		); err != nil {
			return nil, fmt.Errorf("insert conversion: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find conversion: %w", err)
	default:
		if _, err := s.db.Exec(
			`UPDATE conversions SET money_per_point = ?, hours_per_point = ? WHERE id = ?`,
			moneyPerPoint, hoursPerPoint, id,
		); err != nil {
			return nil, fmt.Errorf("update conversion: %w", err)
		}
	}
	return s.Get()
}
