package server

import (
	"fmt"
	"log/slog"

	"github.com/hcardin/mesada/internal/auth"
	"github.com/hcardin/mesada/internal/model"
	"github.com/hcardin/mesada/internal/store"
)

// seedPassword is the well-known starter password for the demo accounts.
// Households are expected to change it after first login.
const seedPassword = "123"

// Seed populates an empty database with a validator and two children so a
// fresh install is usable immediately. It also forces the conversion row
// into existence. A database with any user at all is left untouched.
func Seed(users *store.UserStore, conversions *store.ConversionStore, logger *slog.Logger) error {
	count, err := users.Count()
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	seeds := []struct {
		name  string
		email string
		roles model.RoleSet
	}{
		{"Validador", "admin@example.com", model.RoleSet{model.RoleValidator}},
		{"Joao", "joao@example.com", model.RoleSet{model.RoleChild}},
		{"Ana", "ana@example.com", model.RoleSet{model.RoleChild}},
	}

	for _, s := range seeds {
		email := s.email
		u, err := users.Create(s.name, &email, s.roles, &hash)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", s.name, err)
		}
		logger.Info("seeded user", "id", u.ID, "name", u.Name, "roles", u.Roles.String())
	}

	if _, err := conversions.Get(); err != nil {
		return fmt.Errorf("seed conversion: %w", err)
	}

	logger.Info("seed data created", "users", len(seeds))
	return nil
}
