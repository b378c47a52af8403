package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artstock/console/internal/auth"
)

// AccountDirectory picks the account source: Postgres when a pool is given,
// then ACCOUNTS_FILE, then the built-in demo accounts sharing DEMO_PASSWORD.
func AccountDirectory(cfg *Config, pool *pgxpool.Pool) (auth.Repository, error) {
	if pool != nil {
		return auth.NewPGRepository(pool), nil
	}
	if cfg == nil {
		return nil, errors.New("app: account directory needs configuration")
	}
	if cfg.AccountsFile != "" {
		accounts, err := auth.LoadAccountsFile(cfg.AccountsFile)
		if err != nil {
			return nil, err
		}
		return auth.NewMemoryRepository(accounts), nil
	}
	if cfg.DemoPassword == "" {
		return nil, errors.New("app: no account directory configured")
	}
	hash, err := auth.HashPassword(cfg.DemoPassword, 0)
	if err != nil {
		return nil, fmt.Errorf("app: hash demo password: %w", err)
	}
	return auth.NewMemoryRepository(auth.DemoAccounts(hash)), nil
}

// CheckDirectory fails when the directory holds no usable account.
func CheckDirectory(ctx context.Context, repo auth.Repository) error {
	accounts, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Active && a.Role.Valid() {
			return nil
		}
	}
	return errors.New("app: account directory has no active accounts")
}
