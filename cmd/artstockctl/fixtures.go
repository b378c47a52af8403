package main

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/artstock/console/internal/fixtures"
)

func newFixturesCmd() *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Summarise the generated demo data for a seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				cfg, err := loadCLIConfig()
				if err != nil {
					return err
				}
				seed = cfg.FixtureSeed
			}
			catalog, err := fixtures.Generate(seed, time.Now())
			if err != nil {
				return err
			}
			k := catalog.KPIs()
			rows := []table.Row{
				{"Customers", len(catalog.Customers())},
				{"Active customers", k.ActiveCustomers},
				{"Subscriptions", len(catalog.Subscriptions())},
				{"Active", k.ActiveSubscriptions},
				{"Expiring", k.ExpiringSubscriptions},
				{"Overdue", k.OverdueSubscriptions},
				{"Suspended", k.SuspendedSubscriptions},
				{"Invoices", len(catalog.Invoices())},
				{"Pending invoices", k.PendingInvoices},
				{"Overdue invoices", k.OverdueInvoices},
			}
			for _, currency := range slices.Sorted(maps.Keys(k.ToCollect)) {
				rows = append(rows, table.Row{"To collect " + currency, fmt.Sprintf("%.2f", k.ToCollect[currency])})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Metric", "Value"}, rows)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 42, "fixture seed (defaults to FIXTURE_SEED)")
	return cmd
}
