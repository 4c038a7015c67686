package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/studiowebux/apichain/internal/config"
	"github.com/studiowebux/apichain/internal/fixture"
	"github.com/studiowebux/apichain/internal/history"
	"github.com/studiowebux/apichain/internal/version"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Serve a local JSONPlaceholder-compatible API",
	Long: `Start a local REST fixture serving /users, /posts, /comments and POST /posts.

Failures and delays can be forced per route to exercise the dashboard error
handling. Prometheus metrics are exposed on /metrics.

Examples:
  apichain fixture --port 3000
  apichain fixture --dataset data.yaml --delay 300
  apichain fixture --fail "GET /comments=500" --fail "POST /posts=0@2000ms"
  apichain fixture --export data.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFixture(cmd)
	},
}

// Flags for fixture
var (
	fixturePort    int
	fixtureHost    string
	fixtureDataset string
	fixtureDelay   int
	fixtureFaults  []string
	fixtureExport  string
	fixtureQuiet   bool
)

func initFixtureCmd() {
	fixtureCmd.Flags().IntVar(&fixturePort, "port", 3000, "Port to listen on (0 picks a free port)")
	fixtureCmd.Flags().StringVar(&fixtureHost, "host", "localhost", "Host to bind")
	fixtureCmd.Flags().StringVar(&fixtureDataset, "dataset", "", "Dataset file (.yaml, .yml, .json); built-in data when empty")
	fixtureCmd.Flags().IntVar(&fixtureDelay, "delay", 0, "Delay every response by this many milliseconds")
	fixtureCmd.Flags().StringArrayVar(&fixtureFaults, "fail", []string{}, "Force a failure: \"METHOD /path=STATUS[@DELAYms]\", can be repeated")
	fixtureCmd.Flags().StringVar(&fixtureExport, "export", "", "Write the dataset to a file and exit")
	fixtureCmd.Flags().BoolVar(&fixtureQuiet, "quiet", false, "Do not print requests")
}

func runFixture(cmd *cobra.Command) error {
	ds := fixture.DefaultDataset()
	if fixtureDataset != "" {
		loaded, err := fixture.LoadDataset(fixtureDataset)
		if err != nil {
			return err
		}
		ds = loaded
	}

	if fixtureExport != "" {
		if err := fixture.SaveDataset(ds, fixtureExport); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Dataset written to %s\n", fixtureExport)
		return nil
	}

	cfg := &fixture.Config{
		Port:    fixturePort,
		Host:    fixtureHost,
		Delay:   fixtureDelay,
		Logging: true,
	}
	for _, raw := range fixtureFaults {
		f, err := fixture.ParseFault(raw)
		if err != nil {
			return err
		}
		cfg.Faults = append(cfg.Faults, f)
	}

	srv := fixture.NewServer(cfg, ds, current.logger)
	if err := srv.Start(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Fixture API listening on %s (%d users, %d posts, %d comments)\n",
		srv.Address(), len(ds.Users), len(ds.Posts), len(ds.Comments))
	for _, f := range cfg.Faults {
		fmt.Fprintf(os.Stderr, "  fault: %s %s -> %d (+%dms)\n", f.Method, f.Path, f.Status, f.Delay)
	}
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "\nStopping fixture API")
			return srv.Stop()
		case <-srv.NotifyChannel():
			for _, l := range srv.LogsSince(lastSeq) {
				lastSeq = l.Seq
				if !fixtureQuiet {
					printRequestLog(l)
				}
			}
		}
	}
}

func printRequestLog(l fixture.RequestLog) {
	path := l.Path
	if l.Query != "" {
		path += "?" + l.Query
	}
	fmt.Fprintf(os.Stdout, "%s %-6s %-28s %d %s\n",
		l.Timestamp.Format("15:04:05"), l.Method, path, l.Status, l.Duration)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the workflow audit store",
	Long: `List the workflow steps recorded with --audit (or audit: true in the
config file). Each dashboard or run invocation is one session.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded workflow steps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(m *history.Manager) error {
			entries, err := m.Load(historySession, historyLimit)
			if err != nil {
				return err
			}
			return printHistory(entries)
		})
	},
}

var historySessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recording sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(m *history.Manager) error {
			sessions, err := m.Sessions()
			if err != nil {
				return err
			}
			if historyOutput != "text" {
				return printStructured(sessions, historyOutput)
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions recorded")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tSTARTED\tBASE URL\tPROFILE\tSTEPS")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.BaseURL, s.ProfileName, s.Steps)
			}
			return w.Flush()
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(m *history.Manager) error {
			count, err := m.GetCount()
			if err != nil {
				return err
			}
			if err := m.Clear(); err != nil {
				return err
			}
			fmt.Printf("Cleared %d workflow steps\n", count)
			return nil
		})
	},
}

// Flags for history
var (
	historySession string
	historyLimit   int
	historyOutput  string
)

func initHistoryCmd() {
	historyCmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", "text", "Output format (json/yaml/text)")
	historyListCmd.Flags().StringVar(&historySession, "session", "", "Only show steps of this session")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum number of steps (0 for all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySessionsCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func withHistory(fn func(m *history.Manager) error) error {
	m, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func printHistory(entries []history.Entry) error {
	if historyOutput != "text" {
		return printStructured(entries, historyOutput)
	}
	if len(entries) == 0 {
		fmt.Println("No workflow steps recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPLETED\tSESSION\tAPI\tCOUNT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", e.ID, e.CompletedAt.Format("2006-01-02 15:04:05"), shortID(e.SessionID), e.API, e.Count)
	}
	return w.Flush()
}

func printStructured(v any, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		return fmt.Errorf("unknown output format %q (use json, yaml or text)", format)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(version.String())
		if !versionCheck {
			return nil
		}

		u, err := version.CheckForUpdate(cmd.Context(), version.DefaultReleasesURL, version.Version)
		if err != nil {
			current.logger.Debug("update check failed", zap.Error(err))
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		if u.Available {
			fmt.Printf("A new version is available: %s\n%s\n", u.Latest, u.URL)
		} else {
			fmt.Println("You are running the latest version")
		}
		return nil
	},
}

var versionCheck bool

func initVersionCmd() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check for a newer release")
}
