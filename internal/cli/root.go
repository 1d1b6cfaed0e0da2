// Package cli provides the tabconv command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/tabconv/internal/config"
	"github.com/JonMunkholm/tabconv/internal/core"
	"github.com/JonMunkholm/tabconv/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// flagEnv maps flags onto the environment variables they override.
var flagEnv = map[string]string{
	"log-level":  "LOG_LEVEL",
	"log-format": "LOG_FORMAT",
	"workers":    "UPLOAD_MAX_CONCURRENT",
	"max-size":   "UPLOAD_MAX_FILE_SIZE",
	"storage":    "STORAGE_MODE",
	"out":        "STORAGE_PATH",
	"bucket":     "S3_BUCKET_NAME",
	"prefix":     "S3_PREFIX",
}

// appKey is used to store the app in the command context.
type appKey struct{}

// app is what every subcommand needs once flags and environment are read.
type app struct {
	cfg     *config.Config
	service *core.Service
}

// NewRootCmd creates the root command. getenv is the environment lookup;
// nil means os.Getenv.
func NewRootCmd(getenv func(string) string) *cobra.Command {
	if getenv == nil {
		getenv = os.Getenv
	}

	rootCmd := &cobra.Command{
		Use:   "tabconv",
		Short: "Preview, clean and convert CSV and XLSX files",
		Long: `tabconv loads CSV and Excel files, optionally removes duplicate rows and
fills missing numbers with the column mean, and writes the result as CSV or
XLSX to a local directory, memory or an S3 bucket.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.LoadFrom(overlay(cmd.Flags(), getenv))
			if err != nil {
				return err
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, &app{
				cfg:     cfg,
				service: core.NewService(cfg.Upload),
			}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().Int("workers", 0, "Files processed in parallel")
	rootCmd.PersistentFlags().String("max-size", "", "Maximum input file size (e.g. 512KB, 10MB)")

	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newChartCommand())
	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCmd(nil)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorText(err))
		return 1
	}
	return 0
}

// errorText prefers the catalogued message and falls back to the raw error,
// which on the command line is more useful than ERR000.
func errorText(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}

// overlay returns a lookup that prefers explicitly set flags over getenv.
func overlay(flags *pflag.FlagSet, getenv func(string) string) func(string) string {
	set := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		if env, ok := flagEnv[f.Name]; ok {
			set[env] = f.Value.String()
		}
	})
	return func(key string) string {
		if v, ok := set[key]; ok {
			return v
		}
		return getenv(key)
	}
}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// readInputs reads each path into an uploaded file named by its base name.
func readInputs(paths []string) ([]core.UploadedFile, error) {
	files := make([]core.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, core.NewUploadedFile(filepath.Base(p), data))
	}
	return files, nil
}
