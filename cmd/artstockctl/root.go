package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

// cliConfig is the subset of the server environment the CLI reads. Secrets
// the server requires are not needed here.
type cliConfig struct {
	PGDSN         string `envconfig:"PG_DSN"`
	AccountsFile  string `envconfig:"ACCOUNTS_FILE"`
	DemoPassword  string `envconfig:"DEMO_PASSWORD" default:"artstock-demo"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	FixtureSeed   uint64 `envconfig:"FIXTURE_SEED" default:"42"`
}

func loadCLIConfig() (cliConfig, error) {
	var cfg cliConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "artstockctl",
		Short:         "Operator tools for the Art Stock console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newHashPasswordCmd(),
		newAccountsCmd(),
		newJobsCmd(),
		newFixturesCmd(),
	)
	return root
}

func renderTable(w io.Writer, header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}
