package cmd

import (
	"github.com/spf13/cobra"

	pterrors "github.com/pt-run/pt/internal/errors"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pt",
	Short: "A declarative task runner",
	Long: `pt runs named tasks declared in pt.toml (or a [tool.pt] table in
pyproject.toml): shell commands or scripts, composed through
inheritance, profile overlays, dependency graphs, and pipelines, each
dispatched through an isolated per-invocation dependency environment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. A SIGINT/SIGTERM observed by any
// subcommand's signalContext takes priority over whatever error (if
// any) the command itself returned, so a cancelled run always maps to
// exit code 130 rather than whatever failure the cancellation caused
// downstream (e.g. a subprocess exiting -1).
func Execute() error {
	err := rootCmd.Execute()
	if interrupted {
		return exitWith(130, pterrors.Interrupted())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "path to pt.toml or pyproject.toml (default: discovered upward from cwd)")
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "profile to activate (default: PT_PROFILE env, then default_profile)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("pt {{.Version}}\n")
}
