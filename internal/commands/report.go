package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/report"
)

func newReportCommand() *cobra.Command {
	var dir string
	var filter string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show reconciled spending by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(dir)
			if err != nil {
				return err
			}

			f := report.Filter(filter)
			switch f {
			case report.FilterExpenses, report.FilterIncome, report.FilterAll:
			default:
				return fmt.Errorf("unknown report type %q (expenses, income, all)", filter)
			}

			totals := report.ByCategory(env.st.Transactions(), env.st.Categories(), f)
			if len(totals) == 0 {
				cmd.Println("No reconciled transactions yet")
				return nil
			}

			for _, ct := range totals {
				cmd.Printf("%-6s %-28s %10s  (%d transactions)\n",
					ct.Code, ct.Name, "$"+ct.Total.StringFixed(2), len(ct.Transactions))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "tally data directory")
	cmd.Flags().StringVar(&filter, "type", "expenses", "report type: expenses, income, all")

	return cmd
}
