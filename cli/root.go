// ABOUTME: Root cobra command and shared application state for every subcommand
// ABOUTME: Loads .env and config, builds the logger and store, and saves the snapshot on exit
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const Version = "0.2.0"

// App is the state shared by subcommands once the root pre-run has finished.
type App struct {
	Config *config.Config
	Store  *db.Store
	Logger *zap.Logger

	configPath   string
	snapshotPath string
	latency      string
	logLevel     string
	envFile      string

	// now and confirm are swapped out in tests.
	now     func() time.Time
	confirm func(in io.Reader, out io.Writer, prompt string) bool
}

func newApp() *App {
	return &App{
		now:     time.Now,
		confirm: confirmPrompt,
	}
}

// NewRootCommand builds the dealdesk command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dealdesk",
		Short:         "A small CRM for contacts, deals, and the activity around them",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/dealdesk/config.yaml)")
	flags.StringVar(&app.snapshotPath, "snapshot", "", "SQLite snapshot to seed from and save back to")
	flags.StringVar(&app.latency, "latency", "", "Simulated store latency: off, original, or a scale factor")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&app.envFile, "env-file", ".env", "Dotenv file loaded before the environment is read")

	root.AddCommand(
		newContactsCommand(app),
		newDealsCommand(app),
		newActivityCommand(app),
		newStagesCommand(app),
		newDashboardCommand(app),
		newGraphCommand(app),
		newMCPCommand(app),
		newServeCommand(app),
		newTUICommand(app),
		newExportCommand(app),
		newConfigCommand(app),
	)

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.latency != "" {
		cfg.Latency = a.latency
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.snapshotPath != "" {
		cfg.SnapshotPath = a.snapshotPath
	}
	a.Config = cfg

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.Logger = logger

	latency, err := cfg.StoreLatency()
	if err != nil {
		return err
	}

	opts := []db.Option{db.WithLatency(latency), db.WithLogger(logger)}
	if cfg.SnapshotPath != "" {
		fixtures, err := db.LoadSnapshot(cmd.Context(), cfg.SnapshotPath)
		switch {
		case err == nil:
			opts = append(opts, db.WithFixtures(fixtures))
			logger.Debug("seeding from snapshot", zap.String("path", cfg.SnapshotPath))
		case errors.Is(err, os.ErrNotExist), errors.Is(err, db.ErrNoSnapshot):
			logger.Debug("no snapshot yet, seeding from fixtures", zap.String("path", cfg.SnapshotPath))
		default:
			return err
		}
	}

	store, err := db.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	a.Store = store

	return nil
}

func (a *App) teardown(ctx context.Context) error {
	if a.Logger == nil {
		return nil
	}
	defer func() { _ = a.Logger.Sync() }()

	if a.Store == nil || a.Config.SnapshotPath == "" {
		return nil
	}
	if _, err := db.SaveSnapshot(ctx, a.Store, a.Config.SnapshotPath); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// stdinIsTerminal reports whether the user can answer a prompt.
func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirmPrompt asks a yes/no question. Without a terminal there is nobody to
// ask, so the answer is yes.
func confirmPrompt(in io.Reader, out io.Writer, prompt string) bool {
	if !stdinIsTerminal(in) {
		return true
	}
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
