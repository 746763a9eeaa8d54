package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"crmdeck/internal/api"
	"crmdeck/internal/session"
	"crmdeck/internal/tui"
)

// DefaultServerURL is used when neither --server, CRMDECK_SERVER, nor
// the saved config name a backend.
const DefaultServerURL = "http://localhost:8080"

type App struct {
	ServerURL string
	ConfigDir string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "crmdeck",
		Short:        "Terminal CRM administration console",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in, then start the interactive console
  crmdeck login --email admin@crmdeck.local
  crmdeck

  # Run the bundled dev backend (SQLite) on :8080
  crmdeck serve
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runConsole(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("CRMDECK_SERVER", ""), "Backend base URL (overrides the saved config)")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("CRMDECK_CONFIG_DIR", ""), "Config directory (default: ~/.crmdeck)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newServeCmd(app))

	return cmd
}

// applyConfigDir routes --config-dir through the same override the
// session package already honors for tests.
func (app *App) applyConfigDir() {
	if app.ConfigDir != "" {
		os.Setenv("CRMDECK_CONFIG_DIR", app.ConfigDir)
	}
}

func (app *App) loadConfig() (*session.Config, error) {
	app.applyConfigDir()
	return session.LoadConfig()
}

// serverURL resolves precedence: --server flag / env, then saved
// config, then the default.
func (app *App) serverURL(cfg *session.Config) string {
	if app.ServerURL != "" {
		return app.ServerURL
	}
	if cfg != nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return DefaultServerURL
}

func runConsole(app *App) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	sess := cfg.Current()
	if !sess.Authenticated() {
		return fmt.Errorf("not signed in; run `crmdeck login --email <email>` first")
	}
	client := api.NewClient(app.serverURL(cfg), func() string { return sess.Token })
	return tui.Run(client, sess)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
