// Package cli implements the bugtracker command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/bugtracker/internal/identity"
	"github.com/mesh-intelligence/bugtracker/internal/paths"
	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/sqlite"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// storeAnnotation marks command groups whose subcommands need an attached
// store.
const storeAnnotation = "bugtracker/store"

// app holds the state of one CLI invocation.
type app struct {
	// Global flags.
	configDir string
	dataDir   string
	output    string
	verbose   bool

	cfg   *viper.Viper
	store types.Store
	svc   *resource.Service
}

// Execute runs the CLI with the process arguments and exits with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bugtracker",
		Short:         "A local-first bug tracker",
		Long:          "bugtracker tracks tickets, their labels, projects and assignees.\nData lives in JSONL files queried through SQLite.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.bugtracker)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", formatText, "output format: text, json or yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newProjectCmd(),
		a.newLabelCmd(),
		a.newTicketCmd(),
		a.newUserCmd(),
	)
	return root
}

// setup loads configuration, installs the logger and, for commands that
// need one, attaches the store.
func (a *app) setup(cmd *cobra.Command) error {
	if err := checkFormat(a.output); err != nil {
		return err
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.cfg, err = loadConfig(configDir)
	if err != nil {
		return err
	}
	if err := setupLogging(cmd.ErrOrStderr(), a.cfg.GetString(keyLogLevel), a.verbose); err != nil {
		return err
	}

	if !needsStore(cmd) {
		return nil
	}
	return a.attach()
}

// attach opens the store and builds the resource layer over it.
func (a *app) attach() error {
	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return fmt.Errorf("attach store: %w", err)
	}
	a.store = store
	a.svc = resource.NewService(store, identity.NewLoginProvider(a.cfg.GetString(keyUser), store.Users()))
	return nil
}

// storeConfig resolves the data directory and builds the backend config.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.cfg.GetString(keyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{
		Backend:      a.cfg.GetString(keyBackend),
		DataDir:      dataDir,
		SyncStrategy: a.cfg.GetString(keySyncStrategy),
	}, nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Detach()
	a.store = nil
	if err != nil {
		return fmt.Errorf("detach store: %w", err)
	}
	return nil
}

func needsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[storeAnnotation] == "true" {
			return true
		}
	}
	return false
}

// usageError is a malformed command line.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// userErrors are failures caused by the request rather than the system.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidFilter,
	types.ErrUnsavedReference,
	types.ErrDanglingReference,
	types.ErrDuplicateLogin,
	types.ErrIdentifierConflict,
	types.ErrIdentifierMissing,
	types.ErrIdentifierMismatch,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrSyncStrategyUnknown,
}

// exitCode maps an error to exitUserError or exitSysError.
func exitCode(err error) int {
	var uerr *usageError
	var rerr *resource.RequestError
	if errors.As(err, &uerr) || errors.As(err, &rerr) {
		return exitUserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s: accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// storeGroup returns a parent command whose subcommands use the store.
func storeGroup(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:         use,
		Short:       short,
		Annotations: map[string]string{storeAnnotation: "true"},
	}
}
