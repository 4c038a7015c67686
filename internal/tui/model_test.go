package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/apichain/internal/types"
)

func TestNew_InitializesDefaultMode(t *testing.T) {
	m := CreateTestModel(t, nil)

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "focusedPanel", m.focusedPanel, panelUsers)
	AssertModelField(t, "createField", m.createField, fieldTitle)
	AssertModelField(t, "width", m.width, 120)
}

func TestNew_RequiresController(t *testing.T) {
	if _, err := New(context.Background(), nil, Options{}); err == nil {
		t.Error("expected error for nil controller")
	}
}

func TestModel_StartupLoadsUsers(t *testing.T) {
	m := CreateTestModel(t, nil)

	cmd := m.startup()
	if cmd == nil {
		t.Fatal("startup should issue a request when no users are loaded")
	}
	AssertModelField(t, "loading.Users", m.ctrl.Loading().Users, true)
	if !strings.Contains(m.View(), "Loading users...") {
		t.Error("view should show the users spinner while loading")
	}

	RunCmd(t, m, cmd)

	AssertModelField(t, "loading.Users", m.ctrl.Loading().Users, false)
	AssertModelField(t, "users", len(m.ctrl.Users()), 3)
	steps := m.ctrl.Steps()
	if len(steps) != 1 || steps[0].API != "GET /users" {
		t.Fatalf("steps = %+v, want one GET /users step", steps)
	}

	if m.startup() != nil {
		t.Error("startup should not refetch once users are loaded")
	}
}

func TestModel_SelectUserLoadsTheirPosts(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	Press(m, "j")
	AssertModelField(t, "userIndex", m.userIndex, 1)

	cmd := Press(m, "enter")
	AssertModelField(t, "loading.Posts", m.ctrl.Loading().Posts, true)
	if !strings.Contains(m.View(), "Loading posts...") {
		t.Error("view should show the posts spinner while loading")
	}
	RunCmd(t, m, cmd)

	id, ok := m.ctrl.SelectedUserID()
	AssertModelField(t, "selected", ok, true)
	AssertModelField(t, "selectedUserID", id, 2)
	AssertModelField(t, "loading.Posts", m.ctrl.Loading().Posts, false)

	posts := m.ctrl.Posts()
	if len(posts) != 1 || posts[0].UserID != 2 {
		t.Errorf("posts = %+v, want only posts of user 2", posts)
	}
	if !strings.Contains(m.View(), "Posts of Ervin Howell") {
		t.Error("posts panel should name the selected user")
	}
}

func TestModel_EmptyPostsPlaceholder(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	if !strings.Contains(m.View(), "Select user to view the post or create a post") {
		t.Error("posts panel should show the placeholder before a user is selected")
	}
}

func TestModel_WorkflowStripShowsResponseLength(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	view := m.View()
	if !strings.Contains(view, "GET /users") {
		t.Error("workflow strip should show the step label")
	}
	if !strings.Contains(view, "Response Data Length: 3") {
		t.Error("workflow strip should show the response length")
	}
}

func TestModel_PostCardTruncation(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)
	RunCmd(t, m, Press(m, "enter"))

	view := m.View()
	if !strings.Contains(view, "sunt aut facere repe...") {
		t.Error("long title should be cut to 20 runes with ellipsis")
	}
	if !strings.Contains(view, "qui est esse") || strings.Contains(view, "qui est esse...") {
		t.Error("short title should be shown without ellipsis")
	}
}

func TestModel_CreatePostFlow(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)
	RunCmd(t, m, Press(m, "enter"))

	Press(m, "n")
	AssertModelField(t, "mode", m.mode, ModeCreatePost)
	AssertModelField(t, "IsCreatePostOpen", m.ctrl.IsCreatePostOpen(), true)
	if !strings.Contains(m.View(), "Create a Post") {
		t.Error("view should render the create modal")
	}

	Type(m, "hello")
	Press(m, "tab")
	AssertModelField(t, "createField", m.createField, fieldBody)
	Type(m, "b")
	AssertModelField(t, "draft.Title", m.ctrl.Draft().Title, "hello")
	AssertModelField(t, "draft.Body", m.ctrl.Draft().Body, "b")

	RunCmd(t, m, Press(m, "ctrl+s"))

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "IsCreatePostOpen", m.ctrl.IsCreatePostOpen(), false)
	AssertModelField(t, "draft empty", m.ctrl.Draft().IsEmpty(), true)
	AssertModelField(t, "titleInput", m.titleInput.Value(), "")

	posts := m.ctrl.Posts()
	last := posts[len(posts)-1]
	AssertModelField(t, "title", last.Title, "HELLO")
	AssertModelField(t, "body", last.Body, "b")
	AssertModelField(t, "userId", last.UserID, 1)
	AssertModelField(t, "postIndex", m.postIndex, len(posts)-1)

	steps := m.ctrl.Steps()
	AssertModelField(t, "last step", steps[len(steps)-1].API, "POST /posts")
}

func TestModel_CreatePostFailureKeepsModalOpen(t *testing.T) {
	fake := newFakeAPI()
	fake.createErr = statusError(500)
	m := CreateLoadedTestModel(t, fake)

	Press(m, "n")
	Type(m, "draft")
	RunCmd(t, m, Press(m, "ctrl+s"))

	AssertModelField(t, "mode", m.mode, ModeCreatePost)
	AssertModelField(t, "error", m.ctrl.ErrorMessage(), "Failed to create a post")
	AssertModelField(t, "draft.Title", m.ctrl.Draft().Title, "draft")
	if !strings.Contains(m.View(), "Failed to create a post") {
		t.Error("create modal should show the error")
	}
}

func TestModel_CancelCreatePostKeepsDraft(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	Press(m, "n")
	Type(m, "abc")
	Press(m, "esc")

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "IsCreatePostOpen", m.ctrl.IsCreatePostOpen(), false)
	AssertModelField(t, "draft.Title", m.ctrl.Draft().Title, "abc")

	Press(m, "n")
	AssertModelField(t, "titleInput restored", m.titleInput.Value(), "abc")
}

func TestModel_TypingInFormDoesNotTriggerActions(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	Press(m, "n")
	Type(m, "quit?")

	AssertModelField(t, "mode", m.mode, ModeCreatePost)
	AssertModelField(t, "draft.Title", m.ctrl.Draft().Title, "quit?")
}

func TestModel_ViewComments(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)
	RunCmd(t, m, Press(m, "enter"))

	Press(m, "tab")
	AssertModelField(t, "focusedPanel", m.focusedPanel, panelPosts)

	cmd := Press(m, "enter")
	AssertModelField(t, "loading.Comments", m.ctrl.Loading().Comments, true)
	RunCmd(t, m, cmd)

	AssertModelField(t, "mode", m.mode, ModeComments)
	AssertModelField(t, "IsCommentsOpen", m.ctrl.IsCommentsOpen(), true)
	view := m.View()
	if !strings.Contains(view, "Eliseo@gardner.biz") || !strings.Contains(view, "laudantium enim quasi") {
		t.Error("comments modal should show body and email")
	}

	Press(m, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "IsCommentsOpen", m.ctrl.IsCommentsOpen(), false)
}

func TestModel_ViewCommentsEmpty(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)
	RunCmd(t, m, Press(m, "enter"))

	Press(m, "tab")
	Press(m, "j") // post 2 has no comments
	RunCmd(t, m, Press(m, "enter"))

	AssertModelField(t, "mode", m.mode, ModeComments)
	AssertModelField(t, "error", m.ctrl.ErrorMessage(), "")
	if !strings.Contains(m.View(), "No comments available.") {
		t.Error("comments modal should show the empty placeholder")
	}
}

func TestModel_ErrorBannerAndDetail(t *testing.T) {
	fake := newFakeAPI()
	fake.usersErr = statusError(500)
	m := CreateLoadedTestModel(t, fake)

	want := "Failed to fetch Users: Request failed with status code 500"
	AssertModelField(t, "error", m.ctrl.ErrorMessage(), want)
	AssertModelField(t, "loading.Users", m.ctrl.Loading().Users, false)
	if !strings.Contains(m.View(), want) {
		t.Error("view should show the error banner")
	}

	Press(m, "e")
	AssertModelField(t, "mode", m.mode, ModeErrorDetail)
	if !strings.Contains(m.View(), "Error Details") {
		t.Error("error modal should render")
	}
	Press(m, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)

	// A later success clears the banner
	fake.mu.Lock()
	fake.usersErr = nil
	fake.mu.Unlock()
	RunCmd(t, m, Press(m, "r"))
	AssertModelField(t, "error", m.ctrl.ErrorMessage(), "")
	if strings.Contains(m.View(), "Failed to fetch Users") {
		t.Error("banner should disappear after a success")
	}
}

func TestModel_ShowErrorWithoutError(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	Press(m, "e")
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "statusMsg", m.statusMsg, "No error")
}

func TestModel_UserFilter(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	Press(m, "/")
	AssertModelField(t, "mode", m.mode, ModeUserFilter)

	Type(m, "clem")
	AssertModelField(t, "filterPattern", m.filterPattern, "clem")
	users := m.visibleUsers()
	if len(users) != 1 || users[0].Name != "Clementine Bauch" {
		t.Fatalf("visible users = %+v, want only Clementine Bauch", users)
	}

	Press(m, "enter")
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "filterPattern kept", m.filterPattern, "clem")

	// Selecting picks the filtered user
	RunCmd(t, m, Press(m, "enter"))
	id, _ := m.ctrl.SelectedUserID()
	AssertModelField(t, "selectedUserID", id, 3)

	Press(m, "/")
	Press(m, "esc")
	AssertModelField(t, "filterPattern cleared", m.filterPattern, "")
	AssertModelField(t, "visible users", len(m.visibleUsers()), 3)
}

func TestModel_Navigation(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	Press(m, "G")
	AssertModelField(t, "userIndex after G", m.userIndex, 2)

	Press(m, "j")
	AssertModelField(t, "userIndex clamped", m.userIndex, 2)

	Press(m, "g")
	Press(m, "g")
	AssertModelField(t, "userIndex after gg", m.userIndex, 0)

	Press(m, "k")
	AssertModelField(t, "userIndex clamped at top", m.userIndex, 0)
}

func TestModel_CopyPost(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)
	var copied string
	m.copyToClipboard = func(s string) error {
		copied = s
		return nil
	}

	RunCmd(t, m, Press(m, "enter"))
	Press(m, "tab")
	RunCmd(t, m, Press(m, "y"))

	var post types.Post
	if err := json.Unmarshal([]byte(copied), &post); err != nil {
		t.Fatalf("copied text is not JSON: %v", err)
	}
	AssertModelField(t, "post.ID", post.ID, 1)
	AssertModelField(t, "statusMsg", m.statusMsg, "Post #1 copied to clipboard")
}

func TestModel_CopyPostFailure(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)
	m.copyToClipboard = func(string) error { return errors.New("no clipboard") }

	RunCmd(t, m, Press(m, "enter"))
	RunCmd(t, m, Press(m, "y"))

	AssertModelField(t, "statusMsg", m.statusMsg, "Copy failed: no clipboard")
}

func TestModel_CopyWithoutPosts(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	if cmd := Press(m, "y"); cmd != nil {
		t.Error("copy without posts should not issue a command")
	}
	AssertModelField(t, "statusMsg", m.statusMsg, "No post to copy")
}

func TestModel_HelpModal(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)

	Press(m, "?")
	AssertModelField(t, "mode", m.mode, ModeHelp)
	view := m.View()
	if !strings.Contains(view, "Create a post") {
		t.Error("help should describe the create action")
	}

	Press(m, "q")
	AssertModelField(t, "mode", m.mode, ModeNormal)
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		key  string
	}{
		{"q in normal mode", ModeNormal, "q"},
		{"ctrl+c in normal mode", ModeNormal, "ctrl+c"},
		{"ctrl+c in create modal", ModeCreatePost, "ctrl+c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CreateTestModel(t, nil)
			m.mode = tt.mode

			cmd := Press(m, tt.key)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestModel_StatusMessageTruncation(t *testing.T) {
	m := CreateTestModel(t, nil)

	long := strings.Repeat("x", 150)
	m.setStatusMessage(long)

	AssertModelField(t, "len(statusMsg)", len(m.statusMsg), StatusMaxChars)
	AssertModelField(t, "fullStatusMsg", m.fullStatusMsg, long)
	if !strings.HasSuffix(m.statusMsg, "...") {
		t.Error("truncated status should end with ...")
	}

	m.Update(clearStatusMsg{})
	AssertModelField(t, "statusMsg cleared", m.statusMsg, "")
}

func TestModel_StatusMessageTruncatesOnRunes(t *testing.T) {
	m := CreateTestModel(t, nil)

	long := strings.Repeat("x", 96) + strings.Repeat("é", 10)
	m.setStatusMessage(long)

	if !utf8.ValidString(m.statusMsg) {
		t.Fatalf("statusMsg is not valid UTF-8: %q", m.statusMsg)
	}
	AssertModelField(t, "runes(statusMsg)", utf8.RuneCountInString(m.statusMsg), StatusMaxChars)
	AssertModelField(t, "statusMsg", m.statusMsg, strings.Repeat("x", 96)+"é...")
	AssertModelField(t, "fullStatusMsg", m.fullStatusMsg, long)

	// Exactly the limit in runes is longer in bytes but stays whole
	fits := strings.Repeat("日", StatusMaxChars)
	m.setStatusMessage(fits)
	AssertModelField(t, "statusMsg", m.statusMsg, fits)
}

func TestModel_WorkflowStripScroll(t *testing.T) {
	m := CreateLoadedTestModel(t, nil)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})

	// One cell fits at this width; select twice to get three steps
	RunCmd(t, m, Press(m, "enter"))
	RunCmd(t, m, Press(m, "enter"))

	AssertModelField(t, "steps", len(m.ctrl.Steps()), 3)
	AssertModelField(t, "logOffset follows newest", m.logOffset, m.maxLogOffset())

	Press(m, "[")
	AssertModelField(t, "logOffset after [", m.logOffset, m.maxLogOffset()-1)
	Press(m, "]")
	AssertModelField(t, "logOffset after ]", m.logOffset, m.maxLogOffset())
}
