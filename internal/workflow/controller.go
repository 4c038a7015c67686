package workflow

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/studiowebux/apichain/internal/api"
	"github.com/studiowebux/apichain/internal/types"
	"go.uber.org/zap"
)

// Error messages shown in the error banner
const (
	ErrFetchUsers    = "Failed to fetch Users"
	ErrFetchPosts    = "Failed to fetch Posts"
	ErrCreatePost    = "Failed to create a post"
	ErrFetchComments = "Failed to fetch comments"
)

// API is the set of remote operations the controller chains together
type API interface {
	ListUsers(ctx context.Context) ([]types.User, error)
	ListPostsByUser(ctx context.Context, userID int) ([]types.Post, error)
	ListCommentsByPost(ctx context.Context, postID int) ([]types.Comment, error)
	CreatePost(ctx context.Context, draft types.DraftPost) (types.Post, error)
}

// Recorder receives every step appended to the workflow log
type Recorder interface {
	Record(step types.WorkflowStep) error
}

// Controller owns the dashboard state
type Controller struct {
	mu sync.RWMutex

	api        API
	logger     *zap.Logger
	recorder   Recorder
	staleGuard bool
	now        func() time.Time

	users          []types.User
	selectedUserID *int
	posts          []types.Post
	draft          types.DraftPost
	createOpen     bool
	comments       []types.Comment
	commentsOpen   bool
	errMsg         string
	steps          []types.WorkflowStep

	inFlight [3]int    // pending requests per resource class
	issued   [3]uint64 // last list-fetch sequence issued per resource class
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder hands every workflow step to r
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithStaleGuard drops settlements of list fetches superseded by a newer fetch
// of the same resource class.
func WithStaleGuard() Option {
	return func(c *Controller) {
		c.staleGuard = true
	}
}

// WithClock overrides the clock used to stamp workflow steps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a controller over the given API
func New(client API, opts ...Option) *Controller {
	c := &Controller{
		api:      client,
		logger:   zap.NewNop(),
		now:      time.Now,
		users:    []types.User{},
		posts:    []types.Post{},
		comments: []types.Comment{},
		steps:    []types.WorkflowStep{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NeedsUsers reports whether the startup fetch should run
func (c *Controller) NeedsUsers() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users) == 0 && c.inFlight[types.ResourceUsers] == 0
}

// BeginUsers marks the users class as loading
func (c *Controller) BeginUsers() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.begin(types.ResourceUsers, kindListUsers, true)
}

// BeginSelectUser records the selection and begins the post fetch for it.
// Re-selecting the same user fetches again.
func (c *Controller) BeginSelectUser(userID int) (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := userID
	c.selectedUserID = &id
	return c.beginPosts(userID)
}

// BeginPosts begins a post fetch. It returns false when userID is unset.
func (c *Controller) BeginPosts(userID int) (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginPosts(userID)
}

func (c *Controller) beginPosts(userID int) (Ticket, bool) {
	if userID <= 0 {
		return Ticket{}, false
	}
	t := c.begin(types.ResourcePosts, kindListPosts, true)
	t.UserID = userID
	t.Label = api.Label(http.MethodGet, api.UserPostsEndpoint(userID))
	return t, true
}

// BeginCreatePost snapshots the draft, upper-cases its title and marks posts
// as loading.
func (c *Controller) BeginCreatePost() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.begin(types.ResourcePosts, kindCreatePost, false)
	t.Draft = types.DraftPost{
		Title: strings.ToUpper(c.draft.Title),
		Body:  c.draft.Body,
	}
	if c.draft.UserID != nil {
		t.Draft.UserID = types.IntPtr(*c.draft.UserID)
	}
	return t
}

// BeginComments marks comments as loading for a post
func (c *Controller) BeginComments(postID int) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.begin(types.ResourceComments, kindListComments, true)
	t.PostID = postID
	t.Label = api.Label(http.MethodGet, api.PostCommentsEndpoint(postID))
	return t
}

func (c *Controller) begin(res types.Resource, kind callKind, sequenced bool) Ticket {
	c.inFlight[res]++
	t := Ticket{Resource: res, kind: kind}
	if sequenced {
		c.issued[res]++
		t.Seq = c.issued[res]
	}
	switch kind {
	case kindListUsers:
		t.Label = api.Label(http.MethodGet, api.UsersEndpoint)
	case kindCreatePost:
		t.Label = api.Label(http.MethodPost, api.PostsEndpoint)
	}
	c.logger.Debug("request started", zap.String("resource", res.String()), zap.Uint64("seq", t.Seq))
	return t
}

// Run performs the network call for a ticket. It never touches controller state.
func (c *Controller) Run(ctx context.Context, t Ticket) Outcome {
	o := Outcome{Ticket: t}
	switch t.kind {
	case kindListUsers:
		o.Users, o.Err = c.api.ListUsers(ctx)
	case kindListPosts:
		o.Posts, o.Err = c.api.ListPostsByUser(ctx, t.UserID)
	case kindCreatePost:
		o.Post, o.Err = c.api.CreatePost(ctx, t.Draft)
	case kindListComments:
		o.Comments, o.Err = c.api.ListCommentsByPost(ctx, t.PostID)
	}
	return o
}

// Settle applies an outcome to the state. The loading flag of the outcome's
// resource class is released whether the call succeeded or failed.
func (c *Controller) Settle(o Outcome) {
	c.mu.Lock()
	step, recorded := c.settle(o)
	recorder := c.recorder
	c.mu.Unlock()

	if recorded && recorder != nil {
		if err := recorder.Record(step); err != nil {
			c.logger.Warn("failed to record workflow step", zap.String("api", step.API), zap.Error(err))
		}
	}
}

func (c *Controller) settle(o Outcome) (types.WorkflowStep, bool) {
	res := o.Ticket.Resource
	if c.inFlight[res] > 0 {
		c.inFlight[res]--
	}

	if c.isStale(o.Ticket) {
		c.logger.Info("discarding superseded response",
			zap.String("api", o.Ticket.Label),
			zap.Uint64("seq", o.Ticket.Seq),
			zap.Uint64("latest", c.issued[res]))
		return types.WorkflowStep{}, false
	}

	if o.Err != nil {
		c.errMsg = failureMessage(o.Ticket.kind, o.Err)
		c.logger.Warn("request failed",
			zap.String("api", o.Ticket.Label),
			zap.String("resource", res.String()),
			zap.Error(o.Err))
		return types.WorkflowStep{}, false
	}

	c.errMsg = ""

	var data []any
	switch o.Ticket.kind {
	case kindListUsers:
		c.users = nonNil(o.Users)
		data = records(c.users)
	case kindListPosts:
		c.posts = nonNil(o.Posts)
		data = records(c.posts)
	case kindCreatePost:
		c.posts = append(c.posts, o.Post)
		c.draft = types.DraftPost{}
		c.createOpen = false
		data = []any{o.Post}
	case kindListComments:
		c.comments = nonNil(o.Comments)
		c.commentsOpen = true
		data = records(c.comments)
	}

	step := types.WorkflowStep{
		API:         o.Ticket.Label,
		Data:        data,
		Count:       len(data),
		CompletedAt: c.now(),
	}
	c.steps = append(c.steps, step)
	c.logger.Info("workflow step", zap.String("api", step.API), zap.Int("count", step.Count))
	return step, true
}

func (c *Controller) isStale(t Ticket) bool {
	if !c.staleGuard || t.Seq == 0 {
		return false
	}
	return t.Seq != c.issued[t.Resource]
}

func failureMessage(kind callKind, err error) string {
	switch kind {
	case kindListUsers:
		return ErrFetchUsers + ": " + err.Error()
	case kindListPosts:
		return ErrFetchPosts
	case kindCreatePost:
		return ErrCreatePost
	case kindListComments:
		return ErrFetchComments
	}
	return err.Error()
}

// Start runs the startup fetch when no users are loaded yet
func (c *Controller) Start(ctx context.Context) error {
	if !c.NeedsUsers() {
		return nil
	}
	return c.FetchUsers(ctx)
}

// FetchUsers loads the user list
func (c *Controller) FetchUsers(ctx context.Context) error {
	return c.runToCompletion(ctx, c.BeginUsers())
}

// SelectUser selects a user and loads their posts
func (c *Controller) SelectUser(ctx context.Context, userID int) error {
	t, ok := c.BeginSelectUser(userID)
	if !ok {
		return nil
	}
	return c.runToCompletion(ctx, t)
}

// FetchPosts loads the posts of a user. It is a no-op for an unset user id.
func (c *Controller) FetchPosts(ctx context.Context, userID int) error {
	t, ok := c.BeginPosts(userID)
	if !ok {
		return nil
	}
	return c.runToCompletion(ctx, t)
}

// CreatePost submits the current draft
func (c *Controller) CreatePost(ctx context.Context) error {
	return c.runToCompletion(ctx, c.BeginCreatePost())
}

// ViewComments loads the comments of a post and opens the comments view
func (c *Controller) ViewComments(ctx context.Context, postID int) error {
	return c.runToCompletion(ctx, c.BeginComments(postID))
}

func (c *Controller) runToCompletion(ctx context.Context, t Ticket) error {
	o := c.Run(ctx, t)
	c.Settle(o)
	return o.Err
}

func records[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
