package ledger

import (
	"database/sql"
	"testing"

	"github.com/hcardin/mesada/internal/database"
	"github.com/hcardin/mesada/internal/model"
	"github.com/hcardin/mesada/internal/store"
)

func setupLedger(t *testing.T) (*sql.DB, *store.UserStore, *store.TaskStore, *store.DebitStore, *Calculator) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	tasks := store.NewTaskStore(db)
	debits := store.NewDebitStore(db)
	return db, users, tasks, debits, NewCalculator(db, users)
}

func TestReportZeroesForNewUser(t *testing.T) {
	_, users, _, _, calc := setupLedger(t)

	users.Create("Joao", nil, model.RoleSet{model.RoleChild}, nil)

	report, err := calc.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("report rows = %d, want 1", len(report))
	}
	r := report[0]
	if r.EarnedMoney != 0 || r.EarnedHours != 0 || r.BalanceMoney != 0 || r.BalanceHours != 0 {
		t.Errorf("new user should report all zeros, got %+v", r)
	}
}

func TestReportCountsOnlyValidatedTasks(t *testing.T) {
	_, users, tasks, _, calc := setupLedger(t)

	child, _ := users.Create("Joao", nil, model.RoleSet{model.RoleChild}, nil)
	validator, _ := users.Create("Val", nil, model.RoleSet{model.RoleValidator}, nil)

	pending, _ := tasks.Create("Pending", 10, model.ConversionMoney, child.ID, child.ID, nil)
	done, _ := tasks.Create("Done", 5, model.ConversionMoney, child.ID, child.ID, nil)
	tasks.Validate(done.ID, validator.ID)

	balance, err := calc.Balance(child.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.EarnedMoney != 5 {
		t.Errorf("earned money = %v, want 5 (pending task %d must not count)", balance.EarnedMoney, pending.ID)
	}
}

func TestBalanceSubtractsDebits(t *testing.T) {
	_, users, tasks, debits, calc := setupLedger(t)

	child, _ := users.Create("Joao", nil, model.RoleSet{model.RoleChild}, nil)
	validator, _ := users.Create("Val", nil, model.RoleSet{model.RoleValidator}, nil)

	task, _ := tasks.Create("Dishes", 5, model.ConversionMoney, child.ID, child.ID, nil)
	tasks.Validate(task.ID, validator.ID)

	money := 2.0
	debits.Create(child.ID, 0, &money, nil, "candy", validator.ID)

	balance, err := calc.Balance(child.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.EarnedMoney != 5 {
		t.Errorf("earned money = %v, want 5", balance.EarnedMoney)
	}
	if balance.DebitedMoney != 2 {
		t.Errorf("debited money = %v, want 2", balance.DebitedMoney)
	}
	if balance.BalanceMoney != 3 {
		t.Errorf("balance money = %v, want 3", balance.BalanceMoney)
	}
}

func TestBalanceSplitsByConversionType(t *testing.T) {
	_, users, tasks, debits, calc := setupLedger(t)

	child, _ := users.Create("Joao", nil, model.RoleSet{model.RoleChild}, nil)
	validator, _ := users.Create("Val", nil, model.RoleSet{model.RoleValidator}, nil)

	m, _ := tasks.Create("Money task", 5, model.ConversionMoney, child.ID, child.ID, nil)
	h, _ := tasks.Create("Hours task", 2, model.ConversionHours, child.ID, child.ID, nil)
	tasks.Validate(m.ID, validator.ID)
	tasks.Validate(h.ID, validator.ID)

	hours := 0.5
	debits.Create(child.ID, 0, nil, &hours, "screen time", validator.ID)

	balance, _ := calc.Balance(child.ID)
	if balance.BalanceMoney != 5 {
		t.Errorf("balance money = %v, want 5", balance.BalanceMoney)
	}
	if balance.BalanceHours != 1.5 {
		t.Errorf("balance hours = %v, want 1.5", balance.BalanceHours)
	}
}

func TestBalanceCanGoNegative(t *testing.T) {
	_, users, _, debits, calc := setupLedger(t)

	child, _ := users.Create("Joao", nil, model.RoleSet{model.RoleChild}, nil)
	validator, _ := users.Create("Val", nil, model.RoleSet{model.RoleValidator}, nil)

	money := 4.0
	debits.Create(child.ID, 0, &money, nil, "advance", validator.ID)

	balance, _ := calc.Balance(child.ID)
	if balance.BalanceMoney != -4 {
		t.Errorf("balance money = %v, want -4", balance.BalanceMoney)
	}
}

func TestBalanceRounding(t *testing.T) {
	_, users, tasks, debits, calc := setupLedger(t)

	child, _ := users.Create("Joao", nil, model.RoleSet{model.RoleChild}, nil)
	validator, _ := users.Create("Val", nil, model.RoleSet{model.RoleValidator}, nil)

	task, _ := tasks.Create("Odd", 0.1, model.ConversionMoney, child.ID, child.ID, nil)
	tasks.Validate(task.ID, validator.ID)

	money := 0.03
	debits.Create(child.ID, 0, &money, nil, "penny", validator.ID)

	balance, _ := calc.Balance(child.ID)
	if balance.BalanceMoney != 0.07 {
		t.Errorf("balance money = %v, want 0.07 rounded to two decimals", balance.BalanceMoney)
	}
}

func TestBalanceUnknownUser(t *testing.T) {
	_, _, _, _, calc := setupLedger(t)

	balance, err := calc.Balance(999)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != nil {
		t.Error("expected nil for unknown user")
	}
}
