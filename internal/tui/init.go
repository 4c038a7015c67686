package tui

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/apichain/internal/keybinds"
	"github.com/studiowebux/apichain/internal/workflow"
	"go.uber.org/zap"
)

// Options configures the dashboard
type Options struct {
	BaseURL     string
	ProfileName string
	Version     string
	Keybinds    *keybinds.Registry // defaults to keybinds.NewDefaultRegistry()
	Logger      *zap.Logger        // defaults to a no-op logger

	// Side effects, overridable in tests
	CopyToClipboard func(string) error
	RenderMarkdown  func(markdown string, width int) (string, error)
}

// New creates the dashboard model around a workflow controller
func New(ctx context.Context, ctrl *workflow.Controller, opts Options) (Model, error) {
	if ctrl == nil {
		return Model{}, errors.New("workflow controller is required")
	}
	if opts.Keybinds == nil {
		opts.Keybinds = keybinds.NewDefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CopyToClipboard == nil {
		opts.CopyToClipboard = clipboard.WriteAll
	}
	if opts.RenderMarkdown == nil {
		opts.RenderMarkdown = NewMarkdownRenderer()
	}

	filterInput := textinput.New()
	filterInput.Prompt = "/"
	filterInput.Placeholder = "name or email"

	titleInput := textinput.New()
	titleInput.Placeholder = "Post Title"
	titleInput.CharLimit = TitleCharLimit

	bodyInput := textarea.New()
	bodyInput.Placeholder = "Post Body"
	bodyInput.ShowLineNumbers = false
	bodyInput.SetHeight(CreatePostBodyHeight)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorIndigo)

	m := Model{
		ctx:             ctx,
		ctrl:            ctrl,
		keybinds:        opts.Keybinds,
		logger:          opts.Logger,
		baseURL:         opts.BaseURL,
		profileName:     opts.ProfileName,
		version:         opts.Version,
		mode:            ModeNormal,
		focusedPanel:    panelUsers, // Start with users focused
		filterInput:     filterInput,
		titleInput:      titleInput,
		bodyInput:       bodyInput,
		createField:     fieldTitle,
		modalView:       viewport.New(80, 20), // For scrollable modals
		helpView:        viewport.New(80, 20),
		spinner:         s,
		copyToClipboard: opts.CopyToClipboard,
		renderMarkdown:  opts.RenderMarkdown,
	}

	return m, nil
}

// Run starts the dashboard and blocks until the user quits
func Run(ctx context.Context, ctrl *workflow.Controller, opts Options) error {
	m, err := New(ctx, ctrl, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
