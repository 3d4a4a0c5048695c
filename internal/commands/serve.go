package commands

import (
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/server"
)

func newServeCommand() *cobra.Command {
	var dir string
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(dir)
			if err != nil {
				return err
			}
			if listen != "" {
				env.cfg.Server.Listen = listen
			}

			srv := server.New(env.cfg, env.st, env.engine(cmd.Context()), env.ctl,
				importer.DefaultRegistry(), env.log)
			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "tally data directory")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")

	return cmd
}
