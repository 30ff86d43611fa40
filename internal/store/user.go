package store

import (
	"database/sql"
	"fmt"

	"github.com/hcardin/mesada/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var email, passwordHash, photoURL sql.NullString
	var roles string

	err := scanner.Scan(&u.ID, &u.Name, &email, &roles, &passwordHash, &photoURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	u.Roles = model.ParseRoleSet(roles)
	if email.Valid {
		u.Email = &email.String
	}
	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if photoURL.Valid {
		u.PhotoURL = &photoURL.String
	}
	return &u, nil
}

const userCols = `id, name, email, roles, password_hash, photo_url, created_at, updated_at`

func (s *UserStore) Create(name string, email *string, roles model.RoleSet, passwordHash *string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, email, roles, password_hash) VALUES (?, ?, ?, ?)`,
		name, nullString(email), roles.String(), nullString(passwordHash),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail looks up a user by email, case-insensitively.
func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) Update(id int64, name string, email *string, roles model.RoleSet) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, email = ?, roles = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, nullString(email), roles.String(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) UpdateEmail(id int64, email *string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(email), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user email: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) UpdatePasswordHash(id int64, hash string) error {
	_, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		hash, id,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return nil
}

func (s *UserStore) UpdatePhotoURL(id int64, url string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET photo_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		url, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update photo url: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the user and everything referencing it, in one transaction:
// tasks where the user is child, submitter or validator, debits where the
// user is target or performer, and the user's sessions. Report queries must
// never see dangling references.
func (s *UserStore) Delete(id int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM tasks WHERE child_id = ? OR submitted_by_id = ? OR validator_id = ?`,
		id, id, id,
	); err != nil {
		return false, fmt.Errorf("delete user tasks: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM debits WHERE user_id = ? OR performed_by_id = ?`,
		id, id,
	); err != nil {
		return false, fmt.Errorf("delete user debits: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete user sessions: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of users, used by the startup seeder.
func (s *UserStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
