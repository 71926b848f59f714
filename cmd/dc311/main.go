// Command dc311 is a command line client for the DC Open311 API.
package main

import (
	"io"
	"os"

	"github.com/apex/log"
	"github.com/civic311/dc311/internal/logx"
	"github.com/civic311/dc311/internal/version"
	"github.com/spf13/cobra"
)

// Options contains the options you can set from the CLI.
type Options struct {
	APIKey   string
	BaseURL  string
	CacheDir string
	EnvFile  string
	JSON     bool
	Verbose  bool
}

func main() {
	log.SetHandler(logx.NewHandler(os.Stderr))
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		log.WithError(err).Error("dc311 failed")
		os.Exit(1)
	}
}

// newRootCommand creates the root command writing its output to
// stdout and its logs to stderr.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var globalOptions Options
	state := &app{options: &globalOptions, stdout: stdout}
	rootCmd := &cobra.Command{
		Use:           "dc311",
		Short:         "dc311 talks with the DC Open311 service request API",
		Args:          cobra.NoArgs,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.setup(stderr)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			state.teardown()
		},
	}
	rootCmd.SetVersionTemplate("{{ .Version }}\n")
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	flags := rootCmd.PersistentFlags()

	flags.StringVar(
		&globalOptions.APIKey,
		"apikey",
		"",
		"API key to send with every request (default: $DC311_APIKEY)",
	)

	flags.StringVar(
		&globalOptions.BaseURL,
		"base-url",
		"",
		"base URL of the API (default: $DC311_BASE_URL or the public API)",
	)

	flags.StringVar(
		&globalOptions.CacheDir,
		"cache-dir",
		"",
		"cache GET responses inside this directory (default: $DC311_CACHE_DIR)",
	)

	flags.StringVar(
		&globalOptions.EnvFile,
		"env-file",
		".env",
		"load environment variables from this file if it exists",
	)

	flags.BoolVar(
		&globalOptions.JSON,
		"json",
		false,
		"print results as JSON",
	)

	flags.BoolVarP(
		&globalOptions.Verbose,
		"verbose",
		"v",
		false,
		"increase verbosity level",
	)

	registerTypes(rootCmd, state)
	registerDefinition(rootCmd, state)
	registerGet(rootCmd, state)
	registerSubmit(rootCmd, state)
	registerToken(rootCmd, state)
	return rootCmd
}
