package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studiowebux/apichain/internal/api"
	"github.com/studiowebux/apichain/internal/cli"
	"github.com/studiowebux/apichain/internal/config"
	"github.com/studiowebux/apichain/internal/history"
	"github.com/studiowebux/apichain/internal/keybinds"
	"github.com/studiowebux/apichain/internal/logging"
	"github.com/studiowebux/apichain/internal/tui"
	"github.com/studiowebux/apichain/internal/version"
	"github.com/studiowebux/apichain/internal/workflow"
	"go.uber.org/zap"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs the command line and always releases what setup opened;
// cobra skips post-run hooks after a RunE error
func execute() error {
	err := rootCmd.Execute()
	if closeErr := teardown(); err == nil {
		err = closeErr
	}
	return err
}

// app holds what PersistentPreRunE resolved for the running command
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	closeLog  func() error
	ctrl      *workflow.Controller
	history   *history.Manager
	sessionID string
}

var current app

var rootCmd = &cobra.Command{
	Use:   "apichain",
	Short: "API chaining dashboard for JSONPlaceholder-style REST APIs",
	Long: `apichain chains calls against a JSONPlaceholder-style REST API:
users, then the posts of a user, then the comments of a post, and lets you
create posts. Every completed call is appended to the workflow log.

Run without arguments to start the interactive dashboard.

Examples:
  apichain                                   # Start the dashboard
  apichain --base-url http://localhost:3000  # Against a local fixture
  apichain run -u 1 --post 3                 # Headless chain, text report
  apichain run -u 2 --all-comments -o json   # Fetch every comment of user 2
  apichain run -u 1 --title "hi" --body "x"  # Create a post
  apichain fixture --port 3000 --fail "GET /posts=500"
  apichain history sessions`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Chain the calls headlessly and print a report",
	Long: `Run the workflow without the dashboard: fetch users, select a user,
optionally fetch comments and create a post, then print the resulting state
and workflow log.

When --user is omitted and stdin is a terminal, a user picker is shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCLI(cmd)
	},
}

// Flags for run
var (
	flagUserID      int
	flagPostID      int
	flagAllComments bool
	flagConcurrency int
	flagTitle       string
	flagBody        string
	flagOutput      string
	flagQuery       string
	flagSave        string
	flagNoColor     bool
	flagNoPrompt    bool
)

func init() {
	// assigned here rather than in the literal: setup refers back to rootCmd
	rootCmd.PersistentPreRunE = setup
	config.BindFlags(rootCmd.PersistentFlags())

	runCmd.Flags().IntVarP(&flagUserID, "user", "u", 0, "User id to select")
	runCmd.Flags().IntVar(&flagPostID, "post", 0, "Post id whose comments to fetch")
	runCmd.Flags().BoolVar(&flagAllComments, "all-comments", false, "Fetch the comments of every post of the user")
	runCmd.Flags().IntVar(&flagConcurrency, "concurrency", cli.DefaultConcurrency, "Parallel comment fetches with --all-comments")
	runCmd.Flags().StringVar(&flagTitle, "title", "", "Create a post with this title")
	runCmd.Flags().StringVar(&flagBody, "body", "", "Create a post with this body")
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (json/yaml/text)")
	runCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath expression applied to the JSON report")
	runCmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save the report to a file")
	runCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	runCmd.Flags().BoolVar(&flagNoPrompt, "no-prompt", false, "Never prompt for a user")
	runCmd.MarkFlagsMutuallyExclusive("post", "all-comments")

	initFixtureCmd()
	initHistoryCmd()
	initVersionCmd()

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fixtureCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and builds the logger, client and controller
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(config.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	current = app{cfg: cfg, logger: logger, closeLog: closeLog}

	logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("base_url", cfg.BaseURL),
		zap.String("profile", cfg.Profile),
		zap.Duration("timeout", cfg.Timeout),
	)

	if !needsController(cmd) {
		return nil
	}

	client, err := api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout),
		api.WithToken(cfg.Token),
		api.WithHeaders(cfg.Headers),
		api.WithTLS(&api.TLSConfig{InsecureSkipVerify: cfg.Insecure}),
		api.WithUserAgent(version.UserAgent()),
		api.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	opts := []workflow.Option{workflow.WithLogger(logger)}
	if cfg.StaleGuard {
		opts = append(opts, workflow.WithStaleGuard())
	}
	if cfg.Audit {
		manager, err := history.NewManager(config.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		recorder, err := manager.NewRecorder(cfg.BaseURL, cfg.Profile)
		if err != nil {
			manager.Close()
			return fmt.Errorf("failed to start audit session: %w", err)
		}
		current.history = manager
		current.sessionID = recorder.SessionID()
		opts = append(opts, workflow.WithRecorder(recorder))
		logger.Info("recording workflow", zap.String("session_id", current.sessionID))
	}

	current.ctrl = workflow.New(client, opts...)
	return nil
}

// needsController reports whether cmd talks to the REST API
func needsController(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == runCmd
}

// teardown closes the audit store and the log file opened by setup
func teardown() error {
	defer func() { current = app{} }()

	if current.history != nil {
		if err := current.history.Close(); err != nil {
			current.logger.Warn("failed to close audit store", zap.Error(err))
		}
	}
	if current.logger != nil {
		_ = current.logger.Sync()
	}
	if current.closeLog != nil {
		return current.closeLog()
	}
	return nil
}

// runTUI starts the interactive dashboard
func runTUI(ctx context.Context) error {
	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	return tui.Run(ctx, current.ctrl, tui.Options{
		BaseURL:     current.cfg.BaseURL,
		ProfileName: current.cfg.Profile,
		Version:     version.Version,
		Keybinds:    registry,
		Logger:      current.logger,
	})
}

// runCLI chains the calls headlessly
func runCLI(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.RunOptions{
		UserID:       flagUserID,
		PostID:       flagPostID,
		AllComments:  flagAllComments,
		Concurrency:  flagConcurrency,
		Title:        flagTitle,
		Body:         flagBody,
		OutputFormat: flagOutput,
		Query:        flagQuery,
		SavePath:     flagSave,
		NoColor:      flagNoColor,
		BaseURL:      current.cfg.BaseURL,
		SessionID:    current.sessionID,
		Logger:       current.logger,
	}
	if !flagNoPrompt {
		opts.PromptUser = cli.PromptForUser
	}

	return cli.Run(ctx, current.ctrl, opts, os.Stdout)
}
