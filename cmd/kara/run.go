package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kara-xyz/go-kara/engine"
	"github.com/kara-xyz/go-kara/eventlog"
	"github.com/kara-xyz/go-kara/fsm"
	"github.com/kara-xyz/go-kara/interchange"
	"github.com/kara-xyz/go-kara/lang"
)

var (
	runWorldPath   string
	runProgramPath string
	runDialect     string
	runLimit       int
	runTracePath   string
	runStorePath   string
	runInterval    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a program against a world",
	Long: `Run a state machine or mini-language program against a world and print
the final world.

The program kind is inferred from the file extension: .js/.py/.rb/.lua are
mini-language source, anything else is parsed as a state machine document.
The run trace can be exported as JSON Lines with --trace, or persisted to
a SQLite database with --store.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runWorldPath, "world", "w", "", "world file (.world XML or JSON)")
	runCmd.Flags().StringVarP(&runProgramPath, "program", "p", "", "program file")
	runCmd.Flags().StringVarP(&runDialect, "dialect", "d", "", "mini-language dialect (default: by extension)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "state machine transition limit (default 10000)")
	runCmd.Flags().StringVar(&runTracePath, "trace", "", "write the run trace as JSON Lines to this file")
	runCmd.Flags().StringVar(&runStorePath, "store", getEnv("KARA_STORE", ""),
		"persist the run trace to this SQLite database (env: KARA_STORE)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "delay between steps (0 = as fast as possible)")
	_ = runCmd.MarkFlagRequired("world")
	_ = runCmd.MarkFlagRequired("program")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	worldData, err := os.ReadFile(runWorldPath)
	if err != nil {
		return err
	}
	w, err := interchange.ReadWorld(worldData)
	if err != nil {
		return err
	}

	runner, err := loadRunner(runProgramPath, runDialect, runLimit)
	if err != nil {
		return err
	}

	store, err := openStore(runStorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	session := engine.NewSession(w, runner, engine.Options{
		Logger:   logger,
		Store:    store,
		Interval: runInterval,
	})
	logger.Info("starting run",
		zap.String("world", runWorldPath),
		zap.String("program", runProgramPath))

	runErr := driveSession(ctx, session)

	fmt.Println(session.World())
	fmt.Printf("steps: %d\n", session.Steps())

	if runTracePath != "" {
		if err := writeTrace(ctx, store, session.ID(), runTracePath); err != nil {
			return err
		}
	}

	if runErr != nil {
		// Stuck states and exhausted budgets are run outcomes worth
		// reporting, not tool failures.
		var stuck *fsm.StuckError
		var limit *fsm.LimitError
		if errors.As(runErr, &stuck) || errors.As(runErr, &limit) || errors.Is(runErr, lang.ErrBudgetExceeded) {
			fmt.Printf("run halted: %v\n", runErr)
			return nil
		}
		return runErr
	}
	return nil
}

func driveSession(ctx context.Context, session *engine.Session) error {
	if runInterval <= 0 {
		return session.RunToEnd(ctx)
	}
	ticker := time.NewTicker(runInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := session.Step(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

func loadRunner(path, dialect string, limit int) (engine.Runner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isMiniProgram(path) {
		d, err := dialectFor(dialect, path)
		if err != nil {
			return nil, err
		}
		prog, err := lang.Compile(string(data), d)
		if err != nil {
			return nil, err
		}
		return engine.MiniProgram(prog), nil
	}
	prog, err := interchange.ReadProgram(data)
	if err != nil {
		return nil, err
	}
	return engine.StateMachine(prog, limit)
}

func openStore(path string) (eventlog.Store, error) {
	if path == "" {
		return eventlog.NewMemoryStore(), nil
	}
	return eventlog.NewSQLiteStore(path)
}

func writeTrace(ctx context.Context, store eventlog.Store, runID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := eventlog.ExportJSONL(ctx, f, store, runID); err != nil {
		return err
	}
	return f.Close()
}
