package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/apichain/internal/keybinds"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Global keys (work in all modes)
	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	// Mode-specific handling
	switch m.mode {
	case ModeNormal:
		return m.handleNormalKeys(msg)
	case ModeUserFilter:
		return m.handleUserFilterKeys(msg)
	case ModeCreatePost:
		return m.handleCreatePostKeys(msg)
	case ModeComments:
		return m.handleViewerKeys(msg, keybinds.ContextComments)
	case ModeHelp:
		return m.handleViewerKeys(msg, keybinds.ContextHelp)
	case ModeErrorDetail:
		return m.handleViewerKeys(msg, keybinds.ContextError)
	}
	return nil
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	// Match key to action using keybinds registry
	action, ok, partial := m.keybinds.MatchMultiKey(keybinds.ContextNormal, msg.String())
	if partial || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit

	case keybinds.ActionSwitchFocus:
		if m.focusedPanel == panelUsers {
			m.focusedPanel = panelPosts
		} else {
			m.focusedPanel = panelUsers
		}

	case keybinds.ActionNavigateUp:
		m.moveCursor(-1)

	case keybinds.ActionNavigateDown:
		m.moveCursor(1)

	case keybinds.ActionGoToTop:
		if m.focusedPanel == panelUsers {
			m.userIndex = 0
		} else {
			m.postIndex = 0
		}

	case keybinds.ActionGoToBottom:
		if m.focusedPanel == panelUsers {
			m.userIndex = max(0, len(m.visibleUsers())-1)
		} else {
			m.postIndex = max(0, len(m.ctrl.Posts())-1)
		}

	case keybinds.ActionSelect:
		if m.focusedPanel == panelUsers {
			return m.selectUser()
		}
		return m.viewComments()

	case keybinds.ActionCreatePost:
		return m.openCreatePost()

	case keybinds.ActionRefreshUsers:
		return m.refreshUsers()

	case keybinds.ActionFilterUsers:
		m.mode = ModeUserFilter
		m.focusedPanel = panelUsers
		m.filterInput.SetValue(m.filterPattern)
		m.filterInput.CursorEnd()
		return m.filterInput.Focus()

	case keybinds.ActionCopyPost:
		return m.copyPost()

	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp
		m.helpView.SetContent(m.helpContent())
		m.helpView.GotoTop()

	case keybinds.ActionShowError:
		if m.ctrl.ErrorMessage() == "" {
			m.setStatusMessage("No error")
			return nil
		}
		m.mode = ModeErrorDetail
		m.modalView.SetContent(m.errorContent())
		m.modalView.GotoTop()

	case keybinds.ActionScrollLogLeft:
		m.logOffset = max(0, m.logOffset-1)

	case keybinds.ActionScrollLogRight:
		m.logOffset = min(m.maxLogOffset(), m.logOffset+1)
	}

	return nil
}

// moveCursor moves the cursor of the focused panel by delta
func (m *Model) moveCursor(delta int) {
	if m.focusedPanel == panelUsers {
		m.userIndex = clamp(m.userIndex+delta, 0, len(m.visibleUsers())-1)
		return
	}
	m.postIndex = clamp(m.postIndex+delta, 0, len(m.ctrl.Posts())-1)
}

func (m *Model) handleUserFilterKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextUserFilter, msg.String()); ok {
		switch action {
		case keybinds.ActionTextSubmit:
			m.filterInput.Blur()
			m.mode = ModeNormal
			return nil
		case keybinds.ActionTextCancel:
			m.filterInput.Blur()
			m.filterInput.Reset()
			m.filterPattern = ""
			m.userIndex = 0
			m.mode = ModeNormal
			return nil
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if pattern := m.filterInput.Value(); pattern != m.filterPattern {
		m.filterPattern = pattern
		m.userIndex = 0
	}
	return cmd
}

func (m *Model) handleCreatePostKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextCreatePost, msg.String()); ok {
		switch action {
		case keybinds.ActionNextField:
			if m.createField == fieldTitle {
				return m.focusField(fieldBody)
			}
			return m.focusField(fieldTitle)
		case keybinds.ActionSubmitPost:
			return m.submitPost()
		case keybinds.ActionCloseModal:
			m.cancelCreatePost()
			return nil
		}
	}

	var cmd tea.Cmd
	if m.createField == fieldTitle {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	}
	m.syncDraft()
	return cmd
}

// handleViewerKeys handles the read-only modals (comments, help, error)
func (m *Model) handleViewerKeys(msg tea.KeyMsg, context keybinds.Context) tea.Cmd {
	view := &m.modalView
	if m.mode == ModeHelp {
		view = &m.helpView
	}

	action, ok, partial := m.keybinds.MatchMultiKey(context, msg.String())
	if partial || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		if m.mode == ModeComments {
			m.ctrl.CloseComments()
		}
		m.mode = ModeNormal
	case keybinds.ActionScrollUp:
		view.ScrollUp(1)
	case keybinds.ActionScrollDown:
		view.ScrollDown(1)
	case keybinds.ActionPageUp:
		view.PageUp()
	case keybinds.ActionPageDown:
		view.PageDown()
	case keybinds.ActionGoToTop:
		view.GotoTop()
	case keybinds.ActionGoToBottom:
		view.GotoBottom()
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(hi, v))
}
