// Command affordability prices mortgage quotes for a purchase price and checks
// them against conforming and high-balance loan limits.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/eligibility"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags.
var version = "dev"

// app carries what every subcommand needs once the root command has loaded
// the configuration.
type app struct {
	configPath   string
	logLevel     string
	outputFormat string

	conf     *config.Configuration
	logger   *zap.Logger
	resolver *eligibility.Resolver
	out      io.Writer
}

func main() {
	a := &app{out: os.Stdout}
	if err := newRootCommand(a).Execute(); err != nil {
		if a.logger != nil {
			a.logger.Error("command failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
			_ = a.logger.Sync()
		} else {
			fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		}
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "affordability",
		Short:         "Mortgage affordability and loan-limit eligibility",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv")

	root.AddCommand(
		newQuoteCommand(a),
		newEvaluateCommand(a),
		newAlternativesCommand(a),
		newResolveCommand(a),
		newFormulasCommand(a),
		newServeCommand(a),
		newConfigCommand(a),
	)
	return root
}

// setup loads .env, the configuration and the logger, then builds the
// resolver. A missing default config file falls back to built-in values.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(constants.DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", constants.DefaultEnvFile, err)
	}

	configPath := a.configPath
	if !cmd.Flags().Changed("config") && fileMissing(configPath) {
		configPath = ""
	}
	conf, err := config.LoadConfiguration(configPath, overlays(cmd)...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.conf = conf

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	a.outputFormat, err = validation.ResolveOutputFormat(a.outputFormat, conf.Output.Format)
	if err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	a.resolver, err = conf.NewResolver(logger)
	if err != nil {
		return fmt.Errorf("failed to build loan program: %w", err)
	}
	return nil
}

// overlays returns the server config file when cmd takes one. The default
// file is optional; one named on the command line must exist.
func overlays(cmd *cobra.Command) []string {
	flag := cmd.Flags().Lookup(serverConfigFlag)
	if flag == nil || flag.Value.String() == "" {
		return nil
	}
	if !flag.Changed && fileMissing(flag.Value.String()) {
		return nil
	}
	return []string{flag.Value.String()}
}

func fileMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
