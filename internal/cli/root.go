// Package cli wires configuration, logging and the store into the liftlog
// command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/sadopc/liftlog/internal/config"
	"github.com/sadopc/liftlog/internal/logging"
	"github.com/sadopc/liftlog/internal/store"
	"github.com/sadopc/liftlog/internal/tui"
)

type options struct {
	configPath string
	dbPath     string
}

// runtime holds what a command needs once flags are parsed. The store is
// opened on first use so commands like "config show" never touch it.
type runtime struct {
	opts   options
	cfg    *config.Config
	store  *store.Store
	logger io.Closer
}

func (rt *runtime) init() error {
	var (
		cfg *config.Config
		err error
	)
	if rt.opts.configPath != "" {
		cfg, err = config.LoadFromFile(config.ExpandPath(rt.opts.configPath))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if rt.opts.dbPath != "" {
		cfg.Database.Path = config.ExpandPath(rt.opts.dbPath)
	}
	rt.cfg = cfg

	rt.logger = logging.Setup(logging.SetupParams{
		LogFileName:   cfg.Log.File,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Debugf("config loaded, database at %s", cfg.Database.Path)
	return nil
}

func (rt *runtime) db() (*store.Store, error) {
	if rt.store != nil {
		return rt.store, nil
	}
	s, err := store.New(rt.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rt.store = s
	return s, nil
}

// close releases the store and the log file, reporting both failures.
func (rt *runtime) close() error {
	var err error
	if rt.store != nil {
		err = multierr.Append(err, rt.store.Close())
		rt.store = nil
	}
	if rt.logger != nil {
		err = multierr.Append(err, rt.logger.Close())
		rt.logger = nil
	}
	return err
}

func (rt *runtime) runTUI() error {
	s, err := rt.db()
	if err != nil {
		return err
	}
	app := tui.NewApp(s, tui.Options{
		Scope:     rt.cfg.ReorderScope(),
		RowHeight: rt.cfg.Ordering.RowHeight,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "liftlog",
		Short: "Personal workout log",
		Long: `liftlog records exercises, timed workout sessions and the sets you log
in them. Run it without a command to open the terminal UI.

EXAMPLES:

  liftlog                              # open the UI
  liftlog exercises list               # show the exercise catalogue
  liftlog exercises export lifts.csv   # export exercises as CSV
  liftlog workouts export backup.json  # back up every workout
  liftlog stats --month 2024-03        # monthly totals
  liftlog history 3                    # best values per day for exercise 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTUI()
		},
	}

	root.PersistentFlags().StringVar(&rt.opts.configPath, "config", "", "config file (default $LIFTLOG_CONFIG_PATH or <config dir>/liftlog/config.yaml)")
	root.PersistentFlags().StringVar(&rt.opts.dbPath, "db", "", "database file, overrides the config")

	root.AddCommand(
		newExercisesCommand(rt),
		newWorkoutsCommand(rt),
		newStatsCommand(rt),
		newHistoryCommand(rt),
		newConfigCommand(rt),
	)
	return root
}

// run executes the command tree with the given arguments and streams.
func run(args []string, in io.Reader, out, errOut io.Writer) error {
	rt := &runtime{}
	root := newRootCommand(rt)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	return multierr.Append(err, rt.close())
}

// Execute runs liftlog with the process arguments.
func Execute() error {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
