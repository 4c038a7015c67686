package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/apichain/internal/api"
	"github.com/studiowebux/apichain/internal/types"
)

// fakeAPI serves a fixed dataset and counts calls
type fakeAPI struct {
	mu sync.Mutex

	users    []types.User
	posts    []types.Post
	comments []types.Comment

	usersErr    error
	postsErr    error
	createErr   error
	commentsErr error

	postListCalls int
	created       []types.DraftPost
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: []types.User{
			{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"},
			{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv"},
		},
		posts: []types.Post{
			{ID: 1, UserID: 1, Title: "first", Body: "one"},
			{ID: 2, UserID: 1, Title: "second", Body: "two"},
			{ID: 11, UserID: 2, Title: "eleventh", Body: "eleven"},
		},
		comments: []types.Comment{
			{ID: 1, PostID: 1, Email: "a@example.com", Body: "nice"},
			{ID: 2, PostID: 1, Email: "b@example.com", Body: "great"},
		},
	}
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]types.User, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return append([]types.User(nil), f.users...), nil
}

func (f *fakeAPI) ListPostsByUser(ctx context.Context, userID int) ([]types.Post, error) {
	f.mu.Lock()
	f.postListCalls++
	f.mu.Unlock()
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	var out []types.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListCommentsByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	var out []types.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreatePost(ctx context.Context, draft types.DraftPost) (types.Post, error) {
	f.mu.Lock()
	f.created = append(f.created, draft)
	f.mu.Unlock()
	if f.createErr != nil {
		return types.Post{}, f.createErr
	}
	post := types.Post{ID: 101, Title: draft.Title, Body: draft.Body}
	if draft.UserID != nil {
		post.UserID = *draft.UserID
	}
	return post, nil
}

func statusError(code int) error {
	return &api.NetworkError{Op: "test", StatusCode: code, Err: fmt.Errorf("status %d", code)}
}

type recorderFunc func(types.WorkflowStep) error

func (f recorderFunc) Record(step types.WorkflowStep) error { return f(step) }

func TestController_InitialState(t *testing.T) {
	c := New(newFakeAPI())

	s := c.Snapshot()
	assert.Empty(t, s.Users)
	assert.Empty(t, s.Posts)
	assert.Empty(t, s.Workflow)
	assert.Nil(t, s.SelectedUserID)
	assert.False(t, s.Loading.Any())
	assert.Empty(t, s.Error)
	assert.False(t, s.CreatePostOpen)
	assert.False(t, s.CommentsOpen)
	assert.True(t, c.NeedsUsers())
}

func TestController_StartLoadsUsers(t *testing.T) {
	c := New(newFakeAPI())

	require.NoError(t, c.Start(context.Background()))

	assert.Len(t, c.Users(), 2)
	steps := c.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, "GET /users", steps[0].API)
	assert.Equal(t, 2, steps[0].Count)
	assert.Len(t, steps[0].Data, 2)
	assert.Empty(t, c.ErrorMessage())
	assert.False(t, c.Loading().Users)
	assert.False(t, c.NeedsUsers())
}

func TestController_StartIsNoOpWhenUsersLoaded(t *testing.T) {
	c := New(newFakeAPI())
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Start(context.Background()))

	assert.Len(t, c.Steps(), 1)
}

func TestController_StartFailure(t *testing.T) {
	fake := newFakeAPI()
	fake.usersErr = statusError(500)
	c := New(fake)

	err := c.Start(context.Background())
	require.Error(t, err)

	assert.Contains(t, c.ErrorMessage(), "Failed to fetch Users")
	assert.Equal(t, "Failed to fetch Users: Request failed with status code 500", c.ErrorMessage())
	assert.Empty(t, c.Users())
	assert.False(t, c.Loading().Users)
	assert.Empty(t, c.Steps())
}

func TestController_LoadingFlagLifecycle(t *testing.T) {
	tests := []struct {
		name     string
		resource types.Resource
		begin    func(c *Controller) Ticket
		fail     func(f *fakeAPI)
	}{
		{
			name:     "users success",
			resource: types.ResourceUsers,
			begin:    func(c *Controller) Ticket { return c.BeginUsers() },
		},
		{
			name:     "users failure",
			resource: types.ResourceUsers,
			begin:    func(c *Controller) Ticket { return c.BeginUsers() },
			fail:     func(f *fakeAPI) { f.usersErr = errors.New("boom") },
		},
		{
			name:     "posts success",
			resource: types.ResourcePosts,
			begin: func(c *Controller) Ticket {
				t, _ := c.BeginSelectUser(1)
				return t
			},
		},
		{
			name:     "posts failure",
			resource: types.ResourcePosts,
			begin: func(c *Controller) Ticket {
				t, _ := c.BeginSelectUser(1)
				return t
			},
			fail: func(f *fakeAPI) { f.postsErr = errors.New("boom") },
		},
		{
			name:     "create failure",
			resource: types.ResourcePosts,
			begin:    func(c *Controller) Ticket { return c.BeginCreatePost() },
			fail:     func(f *fakeAPI) { f.createErr = errors.New("boom") },
		},
		{
			name:     "comments success",
			resource: types.ResourceComments,
			begin:    func(c *Controller) Ticket { return c.BeginComments(1) },
		},
		{
			name:     "comments failure",
			resource: types.ResourceComments,
			begin:    func(c *Controller) Ticket { return c.BeginComments(1) },
			fail:     func(f *fakeAPI) { f.commentsErr = errors.New("boom") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeAPI()
			if tt.fail != nil {
				tt.fail(fake)
			}
			c := New(fake)

			assert.False(t, c.Loading().Get(tt.resource), "flag must be false before the request")

			ticket := tt.begin(c)
			assert.True(t, c.Loading().Get(tt.resource), "flag must be true while pending")

			outcome := c.Run(context.Background(), ticket)
			assert.True(t, c.Loading().Get(tt.resource), "Run must not settle")

			c.Settle(outcome)
			assert.False(t, c.Loading().Get(tt.resource), "flag must be false after settlement")
		})
	}
}

func TestController_LoadingStaysTrueWhileAnotherRequestPending(t *testing.T) {
	c := New(newFakeAPI())

	first, _ := c.BeginSelectUser(1)
	second, _ := c.BeginSelectUser(2)

	c.Settle(c.Run(context.Background(), first))
	assert.True(t, c.Loading().Posts)

	c.Settle(c.Run(context.Background(), second))
	assert.False(t, c.Loading().Posts)
}

func TestController_SelectUserShowsOnlyTheirPosts(t *testing.T) {
	c := New(newFakeAPI())

	require.NoError(t, c.SelectUser(context.Background(), 1))

	id, ok := c.SelectedUserID()
	require.True(t, ok)
	assert.Equal(t, 1, id)

	posts := c.Posts()
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, 1, p.UserID)
	}
	steps := c.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, "GET /posts?userId=1", steps[0].API)
	assert.Equal(t, 2, steps[0].Count)
}

func TestController_ReselectingFetchesAgain(t *testing.T) {
	fake := newFakeAPI()
	c := New(fake)

	require.NoError(t, c.SelectUser(context.Background(), 2))
	require.NoError(t, c.SelectUser(context.Background(), 2))

	assert.Equal(t, 2, fake.postListCalls)
	assert.Len(t, c.Steps(), 2)
}

func TestController_FetchPostsWithoutUserIsNoOp(t *testing.T) {
	fake := newFakeAPI()
	c := New(fake)

	require.NoError(t, c.FetchPosts(context.Background(), 0))

	assert.Equal(t, 0, fake.postListCalls)
	assert.False(t, c.Loading().Posts)
	assert.Empty(t, c.Steps())
}

func TestController_FetchPostsFailure(t *testing.T) {
	fake := newFakeAPI()
	c := New(fake)
	require.NoError(t, c.SelectUser(context.Background(), 1))

	fake.postsErr = statusError(503)
	require.Error(t, c.SelectUser(context.Background(), 2))

	assert.Equal(t, ErrFetchPosts, c.ErrorMessage())
	assert.Len(t, c.Posts(), 2, "previous posts stay displayed")
	assert.False(t, c.Loading().Posts)
	assert.Len(t, c.Steps(), 1)
}

func TestController_CreatePostUppercasesTitleAndAppends(t *testing.T) {
	fake := newFakeAPI()
	c := New(fake)
	require.NoError(t, c.SelectUser(context.Background(), 1))
	callsBefore := fake.postListCalls

	c.OpenCreatePost()
	c.SetDraftTitle("hello")
	c.SetDraftBody("b")
	c.SetDraftUserID(types.IntPtr(1))

	require.NoError(t, c.CreatePost(context.Background()))

	posts := c.Posts()
	require.Len(t, posts, 3)
	last := posts[len(posts)-1]
	assert.Equal(t, "HELLO", last.Title)
	assert.Equal(t, "b", last.Body)
	assert.Equal(t, callsBefore, fake.postListCalls, "create must not refetch the list")

	require.Len(t, fake.created, 1)
	assert.Equal(t, "HELLO", fake.created[0].Title)

	assert.True(t, c.Draft().IsEmpty(), "draft resets after submission")
	assert.False(t, c.IsCreatePostOpen())

	steps := c.Steps()
	assert.Equal(t, "POST /posts", steps[len(steps)-1].API)
	assert.Equal(t, 1, steps[len(steps)-1].Count)
}

func TestController_CreatePostFailureKeepsDraft(t *testing.T) {
	fake := newFakeAPI()
	fake.createErr = statusError(500)
	c := New(fake)

	c.OpenCreatePost()
	c.SetDraftTitle("keep me")

	require.Error(t, c.CreatePost(context.Background()))

	assert.Equal(t, ErrCreatePost, c.ErrorMessage())
	assert.Equal(t, "keep me", c.Draft().Title)
	assert.True(t, c.IsCreatePostOpen())
	assert.False(t, c.Loading().Posts)
	assert.Empty(t, c.Posts())
}

func TestController_OpenCreatePostAttachesSelectedUser(t *testing.T) {
	c := New(newFakeAPI())

	c.OpenCreatePost()
	assert.Nil(t, c.Draft().UserID, "no selection, no user")
	c.CancelCreatePost()

	_, ok := c.BeginSelectUser(2)
	require.True(t, ok)
	c.OpenCreatePost()

	require.NotNil(t, c.Draft().UserID)
	assert.Equal(t, 2, *c.Draft().UserID)
	assert.True(t, c.IsCreatePostOpen())
}

func TestController_ViewCommentsOpensModal(t *testing.T) {
	c := New(newFakeAPI())

	require.NoError(t, c.ViewComments(context.Background(), 1))

	assert.True(t, c.IsCommentsOpen())
	assert.Len(t, c.Comments(), 2)
	steps := c.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, "GET /comments?postId=1", steps[0].API)

	c.CloseComments()
	assert.False(t, c.IsCommentsOpen())
	assert.Empty(t, c.Comments())
}

func TestController_ViewCommentsWithNoComments(t *testing.T) {
	c := New(newFakeAPI())

	require.NoError(t, c.ViewComments(context.Background(), 11))

	s := c.Snapshot()
	assert.True(t, s.CommentsOpen)
	assert.NotNil(t, s.Comments)
	assert.Empty(t, s.Comments)
	assert.Empty(t, s.Error)
	require.Len(t, s.Workflow, 1)
	assert.Equal(t, 0, s.Workflow[0].Count)
}

func TestController_ViewCommentsFailure(t *testing.T) {
	fake := newFakeAPI()
	fake.commentsErr = errors.New("dial tcp: connection refused")
	c := New(fake)

	require.Error(t, c.ViewComments(context.Background(), 1))

	assert.Equal(t, ErrFetchComments, c.ErrorMessage())
	assert.False(t, c.IsCommentsOpen())
	assert.False(t, c.Loading().Comments)
}

func TestController_SuccessOfAnyClassClearsError(t *testing.T) {
	fake := newFakeAPI()
	fake.commentsErr = errors.New("boom")
	c := New(fake)

	require.Error(t, c.ViewComments(context.Background(), 1))
	require.NotEmpty(t, c.ErrorMessage())

	require.NoError(t, c.SelectUser(context.Background(), 1))
	assert.Empty(t, c.ErrorMessage())
}

func TestController_NewestErrorWins(t *testing.T) {
	fake := newFakeAPI()
	fake.postsErr = errors.New("boom")
	fake.commentsErr = errors.New("boom")
	c := New(fake)

	require.Error(t, c.SelectUser(context.Background(), 1))
	require.Error(t, c.ViewComments(context.Background(), 1))

	assert.Equal(t, ErrFetchComments, c.ErrorMessage())
}

func TestController_WorkflowLogIsAppendOnlyInCompletionOrder(t *testing.T) {
	fake := newFakeAPI()
	c := New(fake)
	ctx := context.Background()

	users := c.BeginUsers()
	posts, _ := c.BeginSelectUser(1)
	comments := c.BeginComments(1)

	// settle in reverse of issue order
	c.Settle(c.Run(ctx, comments))
	c.Settle(c.Run(ctx, posts))
	c.Settle(c.Run(ctx, users))

	fake.postsErr = errors.New("boom")
	require.Error(t, c.SelectUser(ctx, 2))

	steps := c.Steps()
	require.Len(t, steps, 3, "failed calls do not append")
	assert.Equal(t, "GET /comments?postId=1", steps[0].API)
	assert.Equal(t, "GET /posts?userId=1", steps[1].API)
	assert.Equal(t, "GET /users", steps[2].API)
}

func TestController_LastSettledSelectionWins(t *testing.T) {
	c := New(newFakeAPI())
	ctx := context.Background()

	first, _ := c.BeginSelectUser(1)
	second, _ := c.BeginSelectUser(2)

	c.Settle(c.Run(ctx, second))
	c.Settle(c.Run(ctx, first))

	posts := c.Posts()
	require.NotEmpty(t, posts)
	assert.Equal(t, 1, posts[0].UserID, "stale response overwrites the display")
	id, _ := c.SelectedUserID()
	assert.Equal(t, 2, id)
	assert.Len(t, c.Steps(), 2)
}

func TestController_StaleGuardDropsSupersededResponse(t *testing.T) {
	c := New(newFakeAPI(), WithStaleGuard())
	ctx := context.Background()

	first, _ := c.BeginSelectUser(1)
	second, _ := c.BeginSelectUser(2)

	c.Settle(c.Run(ctx, second))
	c.Settle(c.Run(ctx, first))

	posts := c.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, 2, posts[0].UserID)
	assert.False(t, c.Loading().Posts)
	require.Len(t, c.Steps(), 1)
	assert.Equal(t, "GET /posts?userId=2", c.Steps()[0].API)
}

func TestController_StaleGuardNeverDropsCreate(t *testing.T) {
	c := New(newFakeAPI(), WithStaleGuard())
	ctx := context.Background()

	c.SetDraftTitle("x")
	create := c.BeginCreatePost()
	fetch, _ := c.BeginSelectUser(2)

	c.Settle(c.Run(ctx, fetch))
	c.Settle(c.Run(ctx, create))

	posts := c.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "X", posts[1].Title)
}

func TestController_RecorderReceivesSteps(t *testing.T) {
	var recorded []string
	rec := recorderFunc(func(step types.WorkflowStep) error {
		recorded = append(recorded, step.API)
		return errors.New("disk full")
	})
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := New(newFakeAPI(), WithRecorder(rec), WithClock(func() time.Time { return fixed }))

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.SelectUser(context.Background(), 1))

	assert.Equal(t, []string{"GET /users", "GET /posts?userId=1"}, recorded)
	assert.Empty(t, c.ErrorMessage(), "recorder failures never reach the banner")
	assert.Equal(t, fixed, c.Steps()[0].CompletedAt)
}

func TestController_ConcurrentSettlements(t *testing.T) {
	c := New(newFakeAPI())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(postID int) {
			defer wg.Done()
			_ = c.ViewComments(ctx, postID)
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Steps(), 20)
	assert.False(t, c.Loading().Comments)
}

func TestController_SnapshotIsACopy(t *testing.T) {
	c := New(newFakeAPI())
	require.NoError(t, c.Start(context.Background()))

	s := c.Snapshot()
	s.Users[0].Name = "changed"
	s.Workflow = append(s.Workflow, types.WorkflowStep{API: "fake"})

	assert.Equal(t, "Leanne Graham", c.Users()[0].Name)
	assert.Len(t, c.Steps(), 1)
}
