package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/artstock/console/internal/app"
	"github.com/artstock/console/internal/auth"
	"github.com/artstock/console/internal/platform/db"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for an accounts file or the accounts table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

// readPassword takes the argument, or the first stdin line so the secret
// stays out of shell history.
func readPassword(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is empty")
	}
	return password, nil
}

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and load the account directory",
	}
	cmd.AddCommand(newAccountsListCmd(), newAccountsImportCmd())
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts from the configured directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var pool *pgxpool.Pool
			if cfg.PGDSN != "" {
				pool, err = db.New(ctx, cfg.PGDSN, 2)
				if err != nil {
					return err
				}
				defer pool.Close()
			}
			repo, err := app.AccountDirectory(&app.Config{
				AccountsFile: cfg.AccountsFile,
				DemoPassword: cfg.DemoPassword,
			}, pool)
			if err != nil {
				return err
			}
			accounts, err := repo.List(ctx)
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
}

func printAccounts(w io.Writer, accounts []auth.Account) {
	rows := make([]table.Row, 0, len(accounts))
	for _, a := range accounts {
		status := "active"
		if !a.Active {
			status = "inactive"
		}
		rows = append(rows, table.Row{a.Email, a.Name, string(a.Role), status})
	}
	renderTable(w, table.Row{"Email", "Name", "Role", "Status"}, rows)
}

func newAccountsImportCmd() *cobra.Command {
	var (
		file    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert an accounts YAML file into the Postgres directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			if cfg.PGDSN == "" {
				return errors.New("PG_DSN is required to import accounts")
			}
			if file == "" {
				file = cfg.AccountsFile
			}
			if file == "" {
				return errors.New("--file or ACCOUNTS_FILE is required")
			}
			accounts, err := auth.LoadAccountsFile(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.New(ctx, cfg.PGDSN, 2)
			if err != nil {
				return err
			}
			defer pool.Close()
			repo := auth.NewPGRepository(pool)
			if migrate {
				if err := repo.EnsureSchema(ctx); err != nil {
					return err
				}
			}
			if err := repo.Import(ctx, accounts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d accounts\n", len(accounts))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "accounts YAML file (defaults to ACCOUNTS_FILE)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the accounts table first")
	return cmd
}
