package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AppFs is the filesystem used for config, input documents and backups.
var AppFs afero.Fs = afero.NewOsFs()

// EnvPrefix prefixes every environment override, e.g. SQLHELPER_DB.
const EnvPrefix = "SQLHELPER"

// configKeys are the global flags that may come from config or environment.
var configKeys = []string{
	"db",
	"driver",
	"format",
	"verbose",
	"log-queries",
	"log-results",
	"literal",
}

// loadConfig resolves global options. Precedence: flag, environment
// (including .env), config file, flag default.
func loadConfig(cmd *cobra.Command, opts *RootOptions) error {
	loadDotEnv()

	v := viper.New()
	v.SetFs(AppFs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Root().PersistentFlags()
	for _, key := range configKeys {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", opts.Config, err)
		}
	} else {
		v.SetConfigName("sqlhelper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}

	opts.Database = v.GetString("db")
	opts.Driver = v.GetString("driver")
	opts.Format = v.GetString("format")
	opts.Verbose = v.GetBool("verbose")
	opts.LogQueries = v.GetBool("log-queries")
	opts.LogResults = v.GetBool("log-results")
	opts.Literal = v.GetBool("literal")
	return nil
}

// loadDotEnv loads .env from the working directory when present. Existing
// environment variables win.
func loadDotEnv() {
	if _, err := AppFs.Stat(".env"); err != nil {
		return
	}
	f, err := AppFs.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return
	}
	for k, val := range env {
		if _, set := os.LookupEnv(k); !set {
			_ = os.Setenv(k, val)
		}
	}
}
