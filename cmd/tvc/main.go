package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tvc-go/internal/app"
	"tvc-go/internal/config"
	"tvc-go/internal/tvc"

	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the known error kinds to distinct exit codes so scripts
// can tell failures apart.
func exitCode(err error) int {
	var dup *tvc.DuplicateVersionError
	switch {
	case errors.Is(err, tvc.ErrNotFound):
		return 2
	case errors.Is(err, tvc.ErrNotADirectory):
		return 3
	case errors.Is(err, tvc.ErrAlreadyMonitored):
		return 4
	case errors.As(err, &dup):
		return 5
	case errors.Is(err, tvc.ErrNoSuchCommit):
		return 6
	case errors.Is(err, tvc.ErrNotMonitored):
		return 7
	default:
		return 1
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Monitor", "Start").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if frequency > 0 {
		cfg.FrequencySeconds = frequency
	}
	if watch {
		cfg.Watch.Enabled = true
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var (
	frequency int
	watch     bool
	purge     bool
)

var rootCmd = &cobra.Command{
	Use:          "tvc",
	Short:        "Time-triggered version control for directory trees",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Frequency: %s\n", cfg.Frequency())
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s\n", cfg.Database.Type)
		fmt.Printf("Watch:     %v\n", cfg.Watch.Enabled)
		return nil
	},
}

// monitor commands
var monitorCmd = &cobra.Command{
	Use:   "monitor DIR",
	Short: "Register a directory for periodic snapshots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Monitor")
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.Manager().Monitor(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Monitoring %s\n", dir.Path)
		return nil
	},
}

var unmonitorCmd = &cobra.Command{
	Use:   "unmonitor DIR",
	Short: "Deregister a monitored directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Unmonitor")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Manager().Unmonitor(args[0]); err != nil {
			return err
		}

		fmt.Printf("Stopped monitoring %s\n", args[0])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		dirs, err := a.Manager().Directories()
		if err != nil {
			return err
		}

		if len(dirs) == 0 {
			fmt.Println("No monitored directories.")
			return nil
		}
		for _, d := range dirs {
			fmt.Printf("%s  %s\n", d.AddedAt.Format("2006-01-02 15:04:05"), d.Path)
		}
		return nil
	},
}

// daemon commands
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the snapshot daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Start")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Daemon().Run(ctx)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Request a running daemon to stop",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Stop")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Registry().SetDesiredDaemonState(tvc.DaemonStopped); err != nil {
			return fmt.Errorf("requesting stop: %w", err)
		}

		fmt.Println("Stop requested.")
		return nil
	},
}

// openCurrentTree opens a Service over the current working directory.
func openCurrentTree(a *app.App) (*tvc.Service, func() error, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("getting current directory: %w", err)
	}
	return a.OpenTree(cwd)
}

// commit command
var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Run a single snapshot check for the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Commit")
		if err != nil {
			return err
		}
		defer a.Close()

		svc, closeSvc, err := openCurrentTree(a)
		if err != nil {
			return err
		}
		defer closeSvc()

		return svc.Check()
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View snapshot history for the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Log")
		if err != nil {
			return err
		}
		defer a.Close()

		svc, closeSvc, err := openCurrentTree(a)
		if err != nil {
			return err
		}
		defer closeSvc()

		count := 0
		for entry, err := range svc.Log() {
			if err != nil {
				return err
			}
			fmt.Printf("commit %s\n", entry.Version.Checksum)
			fmt.Printf("Date: %s\n", entry.Date)
			fmt.Println(entry.Diff.Render())
			fmt.Println()
			count++
		}
		if count == 0 {
			fmt.Println("No snapshots.")
		}
		return nil
	},
}

// apply command
var applyCmd = &cobra.Command{
	Use:   "apply CHECKSUM",
	Short: "Restore the current directory to a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Apply")
		if err != nil {
			return err
		}
		defer a.Close()

		svc, closeSvc, err := openCurrentTree(a)
		if err != nil {
			return err
		}
		defer closeSvc()

		if err := svc.Apply(args[0]); err != nil {
			return err
		}

		fmt.Printf("Applied %s\n", args[0])
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm CHECKSUM",
	Short: "Remove snapshots matching a checksum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Remove")
		if err != nil {
			return err
		}
		defer a.Close()

		svc, closeSvc, err := openCurrentTree(a)
		if err != nil {
			return err
		}
		defer closeSvc()

		if err := svc.Remove(args[0], purge); err != nil {
			return err
		}

		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tvc %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	startCmd.Flags().IntVarP(&frequency, "frequency", "f", 0, "Override commit frequency in seconds")
	startCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Wake early on filesystem events")
	rmCmd.Flags().BoolVar(&purge, "purge", false, "Also delete the snapshot copies")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(unmonitorCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(versionCmd)
}
