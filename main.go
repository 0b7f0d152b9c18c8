package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bodul/dailygames/internal/content"
	"github.com/bodul/dailygames/internal/crossword"
	"github.com/bodul/dailygames/internal/trivia"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	cfg    Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dailygames",
	Short: "Daily crossword and trivia server",
	Long: `dailygames serves a daily crossword and a daily trivia quiz.

The puzzle and the question set rotate every day from a fixed pool.
Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		var err error
		cfg, err = LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		logger, err = NewLogger(cfg.LogLevel, verbose)
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
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var (
	showDate     string
	showSolution bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the crossword of the day",
	Long: `Prints the crossword selected for a date (today by default) with its clues.

Example:
  dailygames show --date 2025-03-01 --solution`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if showDate != "" {
			var err error
			date, err = time.ParseInLocation(dateLayout, showDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}
		return runShow(cmd.OutOrStdout(), cfg.Content, date, showSolution)
	},
}

// runShow prints the puzzle of date from the configured pools.
func runShow(w io.Writer, cc ContentConfig, date time.Time, withSolution bool) error {
	puzzles, sets, err := loadPools(cc)
	if err != nil {
		return err
	}
	store, err := NewStore(puzzles, sets)
	if err != nil {
		return err
	}
	p, idx := store.PuzzleFor(date)
	fmt.Fprintln(w, renderPuzzle(p, idx, date, withSolution))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	showCmd.Flags().StringVar(&showDate, "date", "", "date to show (YYYY-MM-DD, default today)")
	showCmd.Flags().BoolVar(&showSolution, "solution", false, "fill in the answers")

	rootCmd.AddCommand(serveCmd, showCmd)
}

// loadPools returns the configured content pools, falling back to the
// built-in ones.
func loadPools(cc ContentConfig) ([]*crossword.Puzzle, [][]trivia.Question, error) {
	puzzles := content.Puzzles()
	sets := content.TriviaSets()

	var err error
	if cc.PuzzleFile != "" {
		if puzzles, err = content.LoadPuzzleFile(cc.PuzzleFile); err != nil {
			return nil, nil, fmt.Errorf("puzzle file: %w", err)
		}
	}
	if cc.TriviaFile != "" {
		if sets, err = content.LoadTriviaFile(cc.TriviaFile); err != nil {
			return nil, nil, fmt.Errorf("trivia file: %w", err)
		}
	}
	return puzzles, sets, nil
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	puzzles, sets, err := loadPools(cfg.Content)
	if err != nil {
		return err
	}
	store, err := NewStore(puzzles, sets)
	if err != nil {
		return err
	}
	logger.Info("content loaded", zap.Int("puzzles", len(puzzles)), zap.Int("trivia_sets", len(sets)))

	var hinter Hinter
	if cfg.GCP.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg.GCP)
		if err != nil {
			return fmt.Errorf("init gemini: %w", err)
		}
		defer gemini.Close()
		hinter = gemini
		logger.Info("gemini client ready",
			zap.String("project", cfg.GCP.ProjectID),
			zap.String("model", gemini.modelName))
	} else {
		logger.Info("GCP_PROJECT_ID not set, clue hints disabled")
	}

	srv := NewServer(store, hinter, logger, cfg)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		// SSE handlers watch the request context, so cancelling it on
		// shutdown lets open streams end.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
