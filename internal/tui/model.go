package tui

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/apichain/internal/keybinds"
	"github.com/studiowebux/apichain/internal/workflow"
	"go.uber.org/zap"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeUserFilter
	ModeCreatePost
	ModeComments
	ModeHelp
	ModeErrorDetail
)

// String returns a short label for the status bar
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeUserFilter:
		return "FILTER"
	case ModeCreatePost:
		return "CREATE"
	case ModeComments:
		return "COMMENTS"
	case ModeHelp:
		return "HELP"
	case ModeErrorDetail:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Model represents the TUI state
type Model struct {
	ctx      context.Context
	ctrl     *workflow.Controller
	keybinds *keybinds.Registry
	logger   *zap.Logger

	// Header
	baseURL     string
	profileName string
	version     string

	// UI state
	mode         Mode
	focusedPanel string // panelUsers or panelPosts
	userIndex    int
	postIndex    int
	logOffset    int // first visible workflow step

	// Users filter
	filterInput   textinput.Model
	filterPattern string

	// Create-post form
	titleInput  textinput.Model
	bodyInput   textarea.Model
	createField int

	// Modals
	modalView viewport.Model
	helpView  viewport.Model
	spinner   spinner.Model
	spinning  bool

	// Side effects, replaceable in tests
	copyToClipboard func(string) error
	renderMarkdown  func(markdown string, width int) (string, error)

	// Status
	statusMsg     string
	fullStatusMsg string

	// Dimensions
	width  int
	height int
}

// Init initializes the model and loads users when none are loaded yet
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startup())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKeyPress(msg)
		return m, cmd

	case outcomeMsg:
		m.ctrl.Settle(msg.outcome)
		m.afterSettle(msg.outcome)
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Loading().Any() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clipboardMsg:
		if msg.err != nil {
			m.logger.Warn("clipboard copy failed", zap.Error(msg.err))
			m.setStatusMessage("Copy failed: " + msg.err.Error())
		} else {
			m.setStatusMessage(msg.what + " copied to clipboard")
		}
		return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })

	case clearStatusMsg:
		m.statusMsg = ""
		m.fullStatusMsg = ""
		return m, nil
	}

	// Forward anything else (cursor blink) to the focused input
	switch m.mode {
	case ModeUserFilter:
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		cmds = append(cmds, cmd)
	case ModeCreatePost:
		var cmd tea.Cmd
		if m.createField == fieldTitle {
			m.titleInput, cmd = m.titleInput.Update(msg)
		} else {
			m.bodyInput, cmd = m.bodyInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// afterSettle reconciles UI state with the controller after an outcome
func (m *Model) afterSettle(o workflow.Outcome) {
	if err := o.Err; err != nil {
		m.logger.Debug("request failed", zap.String("api", o.Ticket.Label), zap.Error(err))
	}

	// Keep cursors inside the lists
	m.clampCursors()

	// Create succeeded: controller closed the modal and reset the draft
	if m.mode == ModeCreatePost && !m.ctrl.IsCreatePostOpen() {
		m.resetCreateForm()
		m.mode = ModeNormal
		m.postIndex = len(m.ctrl.Posts()) - 1
		m.setStatusMessage("Post created")
	}

	// Comments loaded: show them
	if m.ctrl.IsCommentsOpen() && m.mode == ModeNormal {
		m.mode = ModeComments
		m.modalView.SetContent(m.commentsContent())
		m.modalView.GotoTop()
	}

	// Keep the newest step visible
	m.logOffset = m.maxLogOffset()
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeCreatePost:
		return m.renderCreatePostModal()
	case ModeComments:
		return m.renderCommentsModal()
	case ModeHelp:
		return m.renderHelpModal()
	case ModeErrorDetail:
		return m.renderErrorDetailModal()
	default:
		return m.renderMain()
	}
}

// Custom message types
type outcomeMsg struct {
	outcome workflow.Outcome
}

type clipboardMsg struct {
	what string
	err  error
}

type clearStatusMsg struct{}

const statusTimeout = 3 * time.Second

// setStatusMessage sets the status line, truncating it for the footer
func (m *Model) setStatusMessage(msg string) {
	m.fullStatusMsg = msg
	if utf8.RuneCountInString(msg) > StatusMaxChars {
		m.statusMsg = truncateRunes(msg, StatusMaxChars-3)
	} else {
		m.statusMsg = msg
	}
}

// resize propagates the terminal size to viewports and inputs
func (m *Model) resize() {
	modalWidth := m.modalWidth()
	m.modalView.Width = modalWidth - ViewportPaddingHorizontal
	m.modalView.Height = max(1, m.height-ModalHeightMarginSmall-ModalOverheadLines-ModalFooterLines)
	m.helpView.Width = m.modalView.Width
	m.helpView.Height = m.modalView.Height

	inputWidth := max(10, modalWidth-ViewportPaddingHorizontal*2)
	m.titleInput.Width = inputWidth
	m.bodyInput.SetWidth(inputWidth)
	m.filterInput.Width = max(10, m.usersPanelWidth()-ViewportPaddingHorizontal*2)

	if m.mode == ModeHelp {
		m.helpView.SetContent(m.helpContent())
	}
	m.logOffset = min(m.logOffset, m.maxLogOffset())
}

func (m *Model) modalWidth() int {
	return max(30, min(80, m.width-ModalWidthMargin))
}

// clampCursors keeps the list cursors inside the visible lists
func (m *Model) clampCursors() {
	users := m.visibleUsers()
	if m.userIndex >= len(users) {
		m.userIndex = max(0, len(users)-1)
	}
	posts := m.ctrl.Posts()
	if m.postIndex >= len(posts) {
		m.postIndex = max(0, len(posts)-1)
	}
	if m.postIndex < 0 {
		m.postIndex = 0
	}
}

func (m *Model) resetCreateForm() {
	m.titleInput.Reset()
	m.bodyInput.Reset()
	m.titleInput.Blur()
	m.bodyInput.Blur()
	m.createField = fieldTitle
}
