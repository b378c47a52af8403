package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/artstock/console/internal/platform/db"
)

// MemoryRepository serves accounts loaded at startup.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository indexes accounts by lower-cased email.
func NewMemoryRepository(accounts []Account) *MemoryRepository {
	repo := &MemoryRepository{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		repo.accounts[a.Email] = a
	}
	return repo
}

// FindByEmail fetches an account by email.
func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

// List returns all accounts ordered by email.
func (r *MemoryRepository) List(ctx context.Context) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

// LoadAccounts decodes an accounts YAML document.
func LoadAccounts(r io.Reader) ([]Account, error) {
	var doc accountsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: decode accounts: %w", err)
	}
	for i, a := range doc.Accounts {
		if !a.Role.Valid() {
			return nil, fmt.Errorf("auth: account %q: unknown role %q", a.Email, a.Role)
		}
		if strings.TrimSpace(a.Email) == "" || a.PasswordHash == "" {
			return nil, fmt.Errorf("auth: account #%d: email and password_hash are required", i+1)
		}
	}
	return doc.Accounts, nil
}

// LoadAccountsFile reads accounts from path.
func LoadAccountsFile(path string) ([]Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("auth: open accounts: %w", err)
	}
	defer f.Close()
	return LoadAccounts(f)
}

// DemoAccounts returns the three demo identities sharing one password hash.
func DemoAccounts(passwordHash string) []Account {
	return []Account{
		{Email: "superadmin@artstock.demo", Name: demoNames["superadmin@artstock.demo"], Role: RoleSuperAdmin, PasswordHash: passwordHash, Active: true},
		{Email: "admin@artstock.demo", Name: demoNames["admin@artstock.demo"], Role: RoleAdmin, PasswordHash: passwordHash, Active: true},
		{Email: "user@artstock.demo", Name: demoNames["user@artstock.demo"], Role: RoleUser, PasswordHash: passwordHash, Active: true},
	}
}

// PGRepository reads the account directory from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PostgreSQL repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = "email, name, role, password_hash, active"

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE lower(email) = lower($1)", email)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("auth: find account: %w", err)
	}
	return account, nil
}

// List returns all accounts ordered by email.
func (r *PGRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY email")
	if err != nil {
		return nil, fmt.Errorf("auth: list accounts: %w", err)
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("auth: scan account: %w", err)
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

const accountsSchema = `CREATE TABLE IF NOT EXISTS accounts (
	email         TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL CHECK (role IN ('super_admin', 'admin', 'user')),
	password_hash TEXT NOT NULL,
	active        BOOLEAN NOT NULL DEFAULT TRUE
)`

// EnsureSchema creates the accounts table when it is missing.
func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, accountsSchema); err != nil {
		return fmt.Errorf("auth: ensure schema: %w", err)
	}
	return nil
}

// Import upserts accounts in one transaction, keyed by lower-cased email.
func (r *PGRepository) Import(ctx context.Context, accounts []Account) error {
	for _, a := range accounts {
		if !a.Role.Valid() {
			return fmt.Errorf("auth: import %s: %w", a.Email, ErrInvalidRole)
		}
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, a := range accounts {
			_, err := tx.Exec(ctx, `INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role,
	password_hash = EXCLUDED.password_hash, active = EXCLUDED.active`,
				strings.ToLower(strings.TrimSpace(a.Email)), a.Name, string(a.Role), a.PasswordHash, a.Active)
			if err != nil {
				return fmt.Errorf("auth: import %s: %w", a.Email, err)
			}
		}
		return nil
	})
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		a    Account
		role string
	)
	if err := row.Scan(&a.Email, &a.Name, &role, &a.PasswordHash, &a.Active); err != nil {
		return Account{}, err
	}
	a.Role = Role(role)
	return a, nil
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PGRepository)(nil)
)
