package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kara-xyz/go-kara/lang"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kara",
	Short: "kara - grid-world robot simulator",
	Long: `kara runs, validates, and converts programs for the Kara grid-world
robot: linear command lists, sensor-gated state machines (.kara XML or
JSON), and mini-language programs in four dialects (.js, .py, .rb, .lua).

Worlds and state machines use the legacy XML interchange formats or their
JSON mirrors; formats are auto-detected.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v",
		os.Getenv("KARA_VERBOSE") != "", "enable debug logging (env: KARA_VERBOSE)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(detectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getEnv returns the value of an environment variable, or fallback when it
// is unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// dialectFor resolves a mini-language dialect from an explicit flag value
// or the program file's extension.
func dialectFor(flag, path string) (lang.Dialect, error) {
	if flag != "" {
		d, ok := lang.ParseDialect(flag)
		if !ok {
			return 0, fmt.Errorf("unknown dialect %q (want javascript, python, ruby, or lua)", flag)
		}
		return d, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js":
		return lang.JavaScript, nil
	case ".py":
		return lang.Python, nil
	case ".rb":
		return lang.Ruby, nil
	case ".lua":
		return lang.Lua, nil
	}
	return 0, fmt.Errorf("cannot infer dialect from %q; pass --dialect", path)
}

// isMiniProgram reports whether the path looks like mini-language source
// rather than a state machine document.
func isMiniProgram(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".py", ".rb", ".lua":
		return true
	}
	return false
}
