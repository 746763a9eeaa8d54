package cli

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"crmdeck/internal/devserver"
	"crmdeck/internal/session"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, dbPath, envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bundled dev backend (SQLite)",
		Long: `Runs a local CRM backend speaking the same wire contract as the
production server, storing records in a SQLite file. Intended for
demos and development; seed credentials default to
admin@crmdeck.local / admin123 (override via CRMDECK_ADMIN_EMAIL and
CRMDECK_ADMIN_PASSWORD).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; explicit --env-file must exist.
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return err
				}
			} else {
				_ = godotenv.Load()
			}

			if dbPath == "" {
				app.applyConfigDir()
				dir, err := session.ConfigDir()
				if err != nil {
					return err
				}
				dbPath = filepath.Join(dir, "crm.db")
			}
			return devserver.ListenAndServe(addr, dbPath, devserver.EnvOptions())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: <config-dir>/crm.db)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of ./.env")
	return cmd
}
