// Package cmd wires pt's cobra command tree to the configuration loader
// (C1/C4), the execution orchestrator (C7), the scheduler (C8), and the
// pipeline runner, following the donor's cmd/meow/cmd/root.go texture:
// package-level cobra.Command vars registered from each file's init(),
// SilenceUsage/SilenceErrors on the root, a shared getWorkDir-style
// helper for resolving the invocation's working directory.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pt-run/pt/internal/config"
	"github.com/pt-run/pt/internal/execrun"
	"github.com/pt-run/pt/internal/logging"
	"github.com/pt-run/pt/internal/metadata"
	"github.com/pt-run/pt/internal/task"
)

var (
	// Global flags, shared across subcommands.
	flagConfigPath string
	flagProfile    string
	flagVerbose    bool
)

// loadedProject bundles a resolved project with the runner built to
// execute its tasks, so subcommands share one load-and-wire path.
type loadedProject struct {
	Project *task.Project
	Runner  *execrun.Runner
	Logger  *slog.Logger
}

// loadProject discovers (or, if flagConfigPath is set, uses directly)
// the project file, fully resolves it under flagProfile, and builds a
// Runner wired to read inline script metadata from disk.
func loadProject() (*loadedProject, error) {
	cfg := config.Default()
	if flagVerbose {
		cfg.Logging.Level = config.LogLevelDebug
	}

	configFile, root := flagConfigPath, ""
	if configFile == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		configFile, root, err = config.Discover(dir)
		if err != nil {
			return nil, err
		}
	} else {
		abs, err := filepath.Abs(configFile)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		configFile = abs
		root = filepath.Dir(abs)
	}

	logger, closer, err := logging.NewFromConfig(cfg, root)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	proj, err := task.LoadProject(configFile, root, flagProfile, os.Getenv("PT_PROFILE"))
	if err != nil {
		return nil, err
	}
	logger = logging.WithProfile(logger, proj.Profile)

	runner := execrun.NewRunner(proj, cfg.IsolatedRunnerTool, logger)
	runner.ReadScript = readScriptMetadata

	return &loadedProject{Project: proj, Runner: runner, Logger: logger}, nil
}

// readScriptMetadata reads a script payload and parses its inline
// dependency manifest (C2), for the command builder's --with merge.
func readScriptMetadata(path string) (metadata.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return metadata.Metadata{}, err
	}
	return metadata.Parse(string(data))
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, mirroring
// the donor's run.go signal-handling setup.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		interrupted = true
		cancel()
	}()
	return ctx, cancel
}

// interrupted is set by signalContext's handler so Execute can map a
// cancelled run to exit code 130 instead of a generic failure.
var interrupted bool
