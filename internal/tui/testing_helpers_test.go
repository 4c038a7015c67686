package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/apichain/internal/api"
	"github.com/studiowebux/apichain/internal/keybinds"
	"github.com/studiowebux/apichain/internal/types"
	"github.com/studiowebux/apichain/internal/workflow"
)

// fakeAPI serves a small in-memory dataset
type fakeAPI struct {
	mu sync.Mutex

	users    []types.User
	posts    []types.Post
	comments []types.Comment

	usersErr    error
	postsErr    error
	commentsErr error
	createErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users: []types.User{
			{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz"},
			{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv"},
			{ID: 3, Name: "Clementine Bauch", Email: "Nathan@yesenia.net"},
		},
		posts: []types.Post{
			{ID: 1, UserID: 1, Title: "sunt aut facere repellat provident occaecati", Body: "quia et suscipit"},
			{ID: 2, UserID: 1, Title: "qui est esse", Body: "est rerum tempore vitae"},
			{ID: 11, UserID: 2, Title: "et ea vero quia laudantium autem", Body: "delectus reiciendis molestiae"},
		},
		comments: []types.Comment{
			{ID: 1, PostID: 1, Email: "Eliseo@gardner.biz", Body: "laudantium enim quasi"},
			{ID: 2, PostID: 1, Email: "Jayne_Kuhic@sydney.com", Body: "est natus enim nihil"},
		},
	}
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return append([]types.User(nil), f.users...), nil
}

func (f *fakeAPI) ListPostsByUser(ctx context.Context, userID int) ([]types.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	out := []types.Post{}
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListCommentsByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	out := []types.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreatePost(ctx context.Context, draft types.DraftPost) (types.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

// CreateTestModel creates a sized Model over a fake API with clipboard and
// markdown rendering stubbed out
func CreateTestModel(t *testing.T, fake *fakeAPI) *Model {
	t.Helper()

	if fake == nil {
		fake = newFakeAPI()
	}
	ctrl := workflow.New(fake)

	m, err := New(context.Background(), ctrl, Options{
		BaseURL:         "http://fixture.test",
		Version:         "test",
		Keybinds:        keybinds.NewDefaultRegistry(),
		CopyToClipboard: func(string) error { return nil },
		RenderMarkdown: func(markdown string, width int) (string, error) {
			return markdown, nil
		},
	})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &m
}

// CreateLoadedTestModel creates a test model with users already loaded
func CreateLoadedTestModel(t *testing.T, fake *fakeAPI) *Model {
	t.Helper()
	m := CreateTestModel(t, fake)
	RunCmd(t, m, m.startup())
	return m
}

// RunCmd executes a request command and feeds its results back into Update.
// Only pass commands produced by request or copy actions; input focus
// commands block on cursor blink timers.
func RunCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}

	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			RunCmd(t, m, c)
		}
	case outcomeMsg, clipboardMsg:
		m.Update(msg)
	}
}

// Press sends a key to the model and returns the resulting command
func Press(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyMsg(key))
	return cmd
}

// Type sends each rune of text as a key press
func Type(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// AssertModelField verifies a model field has the expected value
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
