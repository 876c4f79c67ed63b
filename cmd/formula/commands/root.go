// Package commands implements the formula CLI: evaluate, validate, and
// inspect formulas from the command line.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ncobase/formula"
	"github.com/ncobase/formula/types"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "formula",
		Short: "Evaluate and validate record formulas",
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default searches ./formula.yaml)")
	rootCmd.PersistentFlags().String("collections", "", "JSON file with collection metadata")
	rootCmd.PersistentFlags().String("collection", "", "collection code the formula runs against")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(
		NewEvalCommand(),
		NewValidateCommand(),
		NewDepsCommand(),
		NewFunctionsCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}

// loadConfig reads engine settings from the --config file or, when
// absent, from a formula.yaml in the working directory. Flags are bound
// over the file so they win.
func loadConfig(cmd *cobra.Command) (formula.Config, error) {
	cfg := formula.DefaultConfig()

	v := viper.New()
	v.SetDefault("max_cache_size", cfg.MaxCacheSize)
	v.SetDefault("cache_enabled", cfg.CacheEnabled)
	v.SetDefault("validate_before_eval", cfg.ValidateBeforeEval)
	v.SetDefault("max_parse_depth", cfg.MaxParseDepth)
	v.SetDefault("default_collection", cfg.DefaultCollection)
	v.SetEnvPrefix("FORMULA")
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("formula")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg.MaxCacheSize = v.GetInt("max_cache_size")
	cfg.CacheEnabled = v.GetBool("cache_enabled")
	cfg.ValidateBeforeEval = v.GetBool("validate_before_eval")
	cfg.MaxParseDepth = v.GetInt("max_parse_depth")
	cfg.DefaultCollection = v.GetString("default_collection")
	return cfg, nil
}

// newEngine builds an engine from the persistent flags and config file
func newEngine(cmd *cobra.Command) (*formula.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	eng := formula.New(formula.WithConfig(cfg), formula.WithLogger(logger))

	if path, _ := cmd.Flags().GetString("collections"); path != "" {
		var collections []types.CollectionMetadata
		if err := readJSONFile(path, &collections); err != nil {
			return nil, fmt.Errorf("load collections: %w", err)
		}
		if err := eng.SetCollections(collections); err != nil {
			return nil, fmt.Errorf("load collections: %w", err)
		}
	}
	return eng, nil
}

func collectionCode(cmd *cobra.Command) string {
	code, _ := cmd.Flags().GetString("collection")
	return code
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// printJSON writes v to stdout as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
