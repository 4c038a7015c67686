package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/studiowebux/apichain/internal/config"
	"github.com/studiowebux/apichain/internal/filter"
	"github.com/studiowebux/apichain/internal/types"
	"github.com/studiowebux/apichain/internal/workflow"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds concurrent comment fetches for --all-comments
const DefaultConcurrency = 4

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	return isCharDevice(os.Stdin)
}

// isCharDevice reports whether f is a character device; a closed or
// unreadable file is not
func isCharDevice(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// RunOptions contains options for running the workflow in CLI mode
type RunOptions struct {
	UserID       int    // user to select; 0 prompts when stdin is a terminal
	PostID       int    // post whose comments to fetch
	AllComments  bool   // fetch comments of every post of the user
	Concurrency  int    // parallel comment fetches, DefaultConcurrency when 0
	Title        string // create a post with this title
	Body         string // create a post with this body
	OutputFormat string // json, yaml, text
	Query        string // JMESPath expression applied to the JSON report
	SavePath     string
	NoColor      bool
	BaseURL      string
	SessionID    string // audit session, when recording

	// Logger receives progress; defaults to a no-op logger
	Logger *zap.Logger
	// PromptUser picks a user interactively; nil disables prompting
	PromptUser func(users []types.User) (int, error)
}

// WorkflowError is returned when a chained call fails; Message is the
// dashboard error text
type WorkflowError struct {
	Message string
	Err     error
}

func (e *WorkflowError) Error() string { return e.Message }
func (e *WorkflowError) Unwrap() error { return e.Err }

// Report is the outcome of a headless run
type Report struct {
	BaseURL        string                  `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	SessionID      string                  `json:"sessionId,omitempty" yaml:"sessionId,omitempty"`
	SelectedUserID *int                    `json:"selectedUserId" yaml:"selectedUserId"`
	Users          []types.User            `json:"users" yaml:"users"`
	Posts          []types.Post            `json:"posts" yaml:"posts"`
	Comments       map[int][]types.Comment `json:"comments,omitempty" yaml:"comments,omitempty"`
	Workflow       []types.WorkflowStep    `json:"workflow" yaml:"workflow"`
	Error          string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run chains the calls, then formats and writes the report to out.
// The returned error is the first workflow failure, if any; the report is
// written either way.
func Run(ctx context.Context, ctrl *workflow.Controller, opts RunOptions, out io.Writer) error {
	report, runErr := Chain(ctx, ctrl, opts)

	output, err := formatOutput(report, opts.OutputFormat, opts.Query)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Save to file if specified
	if opts.SavePath != "" {
		if err := os.WriteFile(opts.SavePath, []byte(output), config.FilePermissions); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", opts.SavePath)
		return runErr
	}

	if !opts.NoColor && isTerminal(out) {
		output = colorize(output, outputFormat(opts), report.Error != "")
	}
	if _, err := io.WriteString(out, output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return runErr
}

// Chain drives the controller: start, select user, comments, create post
func Chain(ctx context.Context, ctrl *workflow.Controller, opts RunOptions) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	comments := make(map[int][]types.Comment)

	finish := func(err error) (*Report, error) {
		report := buildReport(ctrl, opts, comments)
		if err != nil {
			return report, &WorkflowError{Message: ctrl.ErrorMessage(), Err: err}
		}
		return report, nil
	}

	if err := ctrl.Start(ctx); err != nil {
		return finish(err)
	}

	userID := opts.UserID
	if userID == 0 && opts.PromptUser != nil && isInteractive() {
		id, err := opts.PromptUser(ctrl.Users())
		if err != nil {
			return buildReport(ctrl, opts, comments), err
		}
		userID = id
	}

	if userID > 0 {
		logger.Debug("selecting user", zap.Int("user_id", userID))
		if err := ctrl.SelectUser(ctx, userID); err != nil {
			return finish(err)
		}
	}

	switch {
	case opts.AllComments:
		if err := fetchAllComments(ctx, ctrl, opts.Concurrency, comments); err != nil {
			return finish(err)
		}
	case opts.PostID > 0:
		if err := ctrl.ViewComments(ctx, opts.PostID); err != nil {
			return finish(err)
		}
		comments[opts.PostID] = ctrl.Comments()
		ctrl.CloseComments()
	}

	if opts.Title != "" || opts.Body != "" {
		ctrl.OpenCreatePost()
		ctrl.SetDraftTitle(opts.Title)
		ctrl.SetDraftBody(opts.Body)
		if err := ctrl.CreatePost(ctx); err != nil {
			return finish(err)
		}
	}

	return finish(nil)
}

// fetchAllComments fetches comments of every displayed post with bounded
// concurrency. Steps land in the workflow log in completion order. A failed
// post does not cancel its siblings; the first error is returned once all
// fetches have settled.
func fetchAllComments(ctx context.Context, ctrl *workflow.Controller, concurrency int, into map[int][]types.Comment) error {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, post := range ctrl.Posts() {
		postID := post.ID
		g.Go(func() error {
			outcome := ctrl.Run(ctx, ctrl.BeginComments(postID))
			ctrl.Settle(outcome)
			if outcome.Err != nil {
				return outcome.Err
			}
			mu.Lock()
			into[postID] = outcome.Comments
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	ctrl.CloseComments()
	return err
}

func buildReport(ctrl *workflow.Controller, opts RunOptions, comments map[int][]types.Comment) *Report {
	state := ctrl.Snapshot()
	report := &Report{
		BaseURL:        opts.BaseURL,
		SessionID:      opts.SessionID,
		SelectedUserID: state.SelectedUserID,
		Users:          state.Users,
		Posts:          state.Posts,
		Workflow:       state.Workflow,
		Error:          state.Error,
	}
	if len(comments) > 0 {
		report.Comments = comments
	}
	return report
}

// sortedPostIDs returns the keys of a comments map in ascending order
func sortedPostIDs(comments map[int][]types.Comment) []int {
	ids := make([]int, 0, len(comments))
	for id := range comments {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// outputFormat resolves the effective format; queries always produce JSON
func outputFormat(opts RunOptions) string {
	if opts.Query != "" {
		return "json"
	}
	if opts.OutputFormat == "" {
		return "text"
	}
	return opts.OutputFormat
}

// queryReport applies a JMESPath expression to the JSON form of the report
func queryReport(jsonBody, query string) (string, error) {
	result, err := filter.Apply(jsonBody, "", query)
	if err != nil {
		return "", fmt.Errorf("query %q: %w", query, err)
	}
	return result, nil
}
