package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCommand() *cobra.Command {
	var dir string
	var all bool

	cmd := &cobra.Command{
		Use:   "reconcile [transaction-id] [category-code]",
		Short: "Confirm or correct suggested categories",
		Long: `Reconcile moves a suggested transaction to its final reconciled state
and teaches the merchant cache the decision.

  tally reconcile txn_... 200    confirm or correct one transaction
  tally reconcile --all          confirm every non-empty suggestion`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(dir)
			if err != nil {
				return err
			}

			if all {
				if len(args) > 0 {
					return fmt.Errorf("--all takes no arguments")
				}
				return runReconcileAll(cmd, env)
			}
			if len(args) != 2 {
				return fmt.Errorf("expected <transaction-id> <category-code> (or --all)")
			}
			return runReconcileOne(cmd, env, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "tally data directory")
	cmd.Flags().BoolVar(&all, "all", false, "reconcile every suggested transaction with a suggestion")

	return cmd
}

func runReconcileOne(cmd *cobra.Command, env *env, transactionID, categoryCode string) error {
	txn, err := env.ctl.ReconcileOne(transactionID, categoryCode)
	if err != nil {
		return err
	}

	env.record("reconcile", fmt.Sprintf("%s -> %s", txn.ID, txn.CategoryCode), txn.ID)
	cmd.Printf("Reconciled %s (%s) as %s\n", txn.ID, txn.Description, txn.CategoryCode)
	return nil
}

func runReconcileAll(cmd *cobra.Command, env *env) error {
	res, err := env.ctl.ReconcileAll()
	if err != nil {
		return err
	}

	if res.Reconciled > 0 {
		env.record("reconcile-all", fmt.Sprintf("%d reconciled, %d skipped", res.Reconciled, res.Skipped), "")
	}
	cmd.Printf("Reconciled %d transactions", res.Reconciled)
	if res.Skipped > 0 {
		cmd.Printf(", skipped %d without a suggestion", res.Skipped)
	}
	cmd.Println()
	return nil
}
