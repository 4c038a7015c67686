package tui

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/apichain/internal/filter"
	"github.com/studiowebux/apichain/internal/types"
	"github.com/studiowebux/apichain/internal/workflow"
)

// run executes a ticket in a command goroutine; the outcome is settled in Update
func (m *Model) run(t workflow.Ticket) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	request := func() tea.Msg {
		return outcomeMsg{outcome: ctrl.Run(ctx, t)}
	}
	return tea.Batch(request, m.startSpinner())
}

// startSpinner begins ticking unless a tick loop is already running
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// startup loads users once
func (m *Model) startup() tea.Cmd {
	if !m.ctrl.NeedsUsers() {
		return nil
	}
	return m.run(m.ctrl.BeginUsers())
}

// refreshUsers fetches the user list again
func (m *Model) refreshUsers() tea.Cmd {
	m.setStatusMessage("Refreshing users...")
	return m.run(m.ctrl.BeginUsers())
}

// selectUser selects the user under the cursor and fetches their posts
func (m *Model) selectUser() tea.Cmd {
	users := m.visibleUsers()
	if len(users) == 0 || m.userIndex >= len(users) {
		return nil
	}
	user := users[m.userIndex]
	t, ok := m.ctrl.BeginSelectUser(user.ID)
	if !ok {
		return nil
	}
	m.postIndex = 0
	m.setStatusMessage(fmt.Sprintf("Selected %s", user.Name))
	return m.run(t)
}

// viewComments fetches comments of the post under the cursor
func (m *Model) viewComments() tea.Cmd {
	post, ok := m.focusedPost()
	if !ok {
		return nil
	}
	return m.run(m.ctrl.BeginComments(post.ID))
}

// openCreatePost opens the create-post form, restoring any kept draft
func (m *Model) openCreatePost() tea.Cmd {
	m.ctrl.OpenCreatePost()
	draft := m.ctrl.Draft()
	m.titleInput.SetValue(draft.Title)
	m.bodyInput.SetValue(draft.Body)
	m.mode = ModeCreatePost
	return m.focusField(fieldTitle)
}

// submitPost sends the draft
func (m *Model) submitPost() tea.Cmd {
	m.syncDraft()
	m.setStatusMessage("Creating post...")
	return m.run(m.ctrl.BeginCreatePost())
}

// cancelCreatePost closes the form; the draft is kept for next time
func (m *Model) cancelCreatePost() {
	m.syncDraft()
	m.ctrl.CancelCreatePost()
	m.titleInput.Blur()
	m.bodyInput.Blur()
	m.mode = ModeNormal
}

// syncDraft copies the form inputs into the controller draft
func (m *Model) syncDraft() {
	m.ctrl.SetDraftTitle(m.titleInput.Value())
	m.ctrl.SetDraftBody(m.bodyInput.Value())
}

func (m *Model) focusField(field int) tea.Cmd {
	m.createField = field
	if field == fieldTitle {
		m.bodyInput.Blur()
		return m.titleInput.Focus()
	}
	m.titleInput.Blur()
	return m.bodyInput.Focus()
}

// copyPost copies the post under the cursor as indented JSON
func (m *Model) copyPost() tea.Cmd {
	post, ok := m.focusedPost()
	if !ok {
		m.setStatusMessage("No post to copy")
		return nil
	}
	data, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		m.setStatusMessage("Copy failed: " + err.Error())
		return nil
	}
	copyFn := m.copyToClipboard
	what := fmt.Sprintf("Post #%d", post.ID)
	return func() tea.Msg {
		return clipboardMsg{what: what, err: copyFn(string(data))}
	}
}

// visibleUsers returns the users matching the current filter
func (m *Model) visibleUsers() []types.User {
	return filter.FuzzyUsers(m.ctrl.Users(), m.filterPattern)
}

func (m *Model) focusedPost() (types.Post, bool) {
	posts := m.ctrl.Posts()
	if m.postIndex < 0 || m.postIndex >= len(posts) {
		return types.Post{}, false
	}
	return posts[m.postIndex], true
}

// selectedUser returns the selected user when it is loaded
func (m *Model) selectedUser() (types.User, bool) {
	id, ok := m.ctrl.SelectedUserID()
	if !ok {
		return types.User{}, false
	}
	for _, u := range m.ctrl.Users() {
		if u.ID == id {
			return u, true
		}
	}
	return types.User{}, false
}
