package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
)

func newImportCommand() *cobra.Command {
	var dir string
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import bank statement CSVs and suggest categories",
		Long: `Import parses bank statement CSVs, suggests a category for every
transaction (merchant cache first, then one batched AI call), and stores
them as suggested, awaiting reconciliation.

With no arguments, every CSV in <dir>/import/ is imported and moved to
import/processed/. With a file argument, only that file is imported and
left in place.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(dir)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				return importFile(cmd, env, args[0], format, false)
			}
			return importScanned(cmd, env, format)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "tally data directory")
	cmd.Flags().StringVar(&format, "format", "statement", "statement format")

	return cmd
}

func importScanned(cmd *cobra.Command, env *env, format string) error {
	files, err := importer.Scan(env.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("Nothing to import: no CSV files in import/")
		return nil
	}

	for _, f := range files {
		if err := importFile(cmd, env, f.Path, format, true); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func importFile(cmd *cobra.Command, env *env, path, format string, markProcessed bool) error {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown statement format %q", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	ctx := cmd.Context()
	sum, err := importer.Import(ctx, env.st, env.engine(ctx), parser, f)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	if markProcessed {
		if err := importer.MarkProcessed(env.dir, name); err != nil {
			return err
		}
	}

	details := fmt.Sprintf("%s: %d transactions (%d cached, %d ai, %d unsuggested)",
		name, sum.Imported, sum.FromCache, sum.FromAI, sum.Unsuggested)
	env.record("import", details, "")

	cmd.Printf("Imported %d transactions from %s\n", sum.Imported, name)
	cmd.Printf("  %d from merchant cache, %d from AI, %d unsuggested\n",
		sum.FromCache, sum.FromAI, sum.Unsuggested)
	if sum.ProviderErr != nil {
		cmd.Printf("  AI suggestions unavailable: %v\n", sum.ProviderErr)
	}
	return nil
}
