// Package cli implements the favicond command line: serve, fetch and
// version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/favicond/internal/app"
	"github.com/raysh454/favicond/internal/logging"
	"github.com/raysh454/favicond/internal/webclient"
)

type options struct {
	webClient webclient.WebClient
}

// Option customizes the commands. Tests use it to inject a transport.
type Option func(*options)

// WithWebClient makes every command resolve through wc instead of the
// configured backend.
func WithWebClient(wc webclient.WebClient) Option {
	return func(o *options) { o.webClient = wc }
}

// NewRootCmd creates the root command for favicond.
func NewRootCmd(opts ...Option) *cobra.Command {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cmd := &cobra.Command{
		Use:   app.AppName,
		Short: "Resolve website favicons in batches",
		Long: `favicond finds the favicon of each site in a list.

For every site it fetches the home page, tries /favicon.ico, then falls back
to the best icon declared in the page's <link> elements. Sites are resolved
concurrently; one failing site never fails the batch.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file (default: ./favicond.yaml, then the XDG config dir)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewServeCmd(&o))
	cmd.AddCommand(NewFetchCmd(&o))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the file named by --config, or the first default
// location that exists.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := app.Load(path)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	return cfg, nil
}

func newLogger(cfg *app.Config, component string) logging.Logger {
	l, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return logging.NewNopLogger()
	}
	return l.With(logging.Field{Key: "component", Value: component})
}

func newApplication(cfg *app.Config, logger logging.Logger, o *options) (*app.Application, error) {
	var appOpts []app.Option
	if o.webClient != nil {
		appOpts = append(appOpts, app.WithWebClient(o.webClient))
	}
	a, err := app.NewApplication(cfg, logger, appOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialize application: %w", err)
	}
	return a, nil
}
