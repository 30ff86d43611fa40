package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hcardin/mesada/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var validatorID sql.NullInt64
	var validatedAt sql.NullTime
	var validated int
	var convType string

	err := scanner.Scan(
		&t.ID, &t.Name, &t.Amount, &convType, &t.ChildID, &t.SubmittedByID,
		&validatorID, &validated, &t.CreatedAt, &validatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ConversionType = model.ConversionType(convType)
	t.Validated = validated != 0
	if validatorID.Valid {
		t.ValidatorID = &validatorID.Int64
	}
	if validatedAt.Valid {
		v := validatedAt.Time
		t.ValidatedAt = &v
	}
	return &t, nil
}

const taskCols = `id, name, amount, conversion_type, child_id, submitted_by_id, validator_id, validated, created_at, validated_at`

// Create inserts a new task. When validatorID is non-nil the task is born
// already validated with a validation timestamp: a validator registering a
// task on behalf of a child collapses the pending step.
func (s *TaskStore) Create(name string, amount float64, convType model.ConversionType, childID, submittedByID int64, validatorID *int64) (*model.Task, error) {
	var vID sql.NullInt64
	var vAt sql.NullTime
	validated := 0
	if validatorID != nil {
		vID = sql.NullInt64{Int64: *validatorID, Valid: true}
		vAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		validated = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (name, amount, conversion_type, child_id, submitted_by_id, validator_id, validated, validated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, amount, string(convType), childID, submittedByID, vID, validated, vAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks newest first. validated filters by state when non-nil.
func (s *TaskStore) List(validated *bool) ([]model.Task, error) {
	var rows *sql.Rows
	var err error
	if validated == nil {
		rows, err = s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY created_at DESC, id DESC`)
	} else {
		v := 0
		if *validated {
			v = 1
		}
		rows, err = s.db.Query(`SELECT `+taskCols+` FROM tasks WHERE validated = ? ORDER BY created_at DESC, id DESC`, v)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) ListByChild(childID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE child_id = ? ORDER BY created_at DESC, id DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by child: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Validate transitions a pending task to validated. Not-found yields
// (nil, nil). An already-validated task is returned unchanged: duplicate
// submissions from the UI must not overwrite the original validator or
// timestamp.
func (s *TaskStore) Validate(taskID, validatorID int64) (*model.Task, error) {
	existing, err := s.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.Validated {
		return existing, nil
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET validated = 1, validator_id = ?, validated_at = ? WHERE id = ? AND validated = 0`,
		validatorID, time.Now().UTC(), taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("validate task: %w", err)
	}
	return s.GetByID(taskID)
}

// Delete removes the task and reports whether a row was actually deleted.
func (s *TaskStore) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
