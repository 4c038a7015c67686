package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/studiowebux/apichain/internal/keybinds"
)

// NewMarkdownRenderer returns a function that renders markdown using glamour,
// wrapped to the given width.
func NewMarkdownRenderer() func(markdown string, width int) (string, error) {
	return func(markdown string, width int) (string, error) {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(), // Automatically detect light/dark background
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		return r.Render(markdown)
	}
}

type helpSection struct {
	title   string
	context keybinds.Context
}

var helpSections = []helpSection{
	{"Dashboard", keybinds.ContextNormal},
	{"User filter", keybinds.ContextUserFilter},
	{"Create a Post", keybinds.ContextCreatePost},
	{"Comments", keybinds.ContextComments},
}

// helpMarkdown describes the dashboard and lists the active key bindings
func (m *Model) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# API Chaining Dashboard\n\n")
	b.WriteString("Select a user to load their posts, open a post to load its comments, ")
	b.WriteString("or create a new post. Every successful call is appended to the ")
	b.WriteString("**API Workflow** strip with the length of its response.\n\n")
	fmt.Fprintf(&b, "Base URL: `%s`\n\n", m.baseURL)

	for _, section := range helpSections {
		fmt.Fprintf(&b, "## %s\n\n", section.title)
		b.WriteString("| Key | Action |\n|-----|--------|\n")
		for _, group := range groupBindings(m.keybinds.ListBindings(section.context)) {
			fmt.Fprintf(&b, "| `%s` | %s |\n", strings.Join(group.keys, "` `"), actionDescription(group.action))
		}
		b.WriteString("\n")
	}

	b.WriteString("Key bindings can be changed in `~/.apichain/keybinds.json`.\n")
	return b.String()
}

// helpContent renders the help markdown, falling back to the raw text
func (m *Model) helpContent() string {
	markdown := m.helpMarkdown()
	if m.renderMarkdown == nil {
		return markdown
	}
	rendered, err := m.renderMarkdown(markdown, max(20, m.helpView.Width))
	if err != nil {
		m.logger.Sugar().Warnf("help render failed: %v", err)
		return markdown
	}
	return rendered
}

type bindingGroup struct {
	action keybinds.Action
	keys   []string
}

// groupBindings merges keys bound to the same action, keeping first-seen order
func groupBindings(bindings []keybinds.Binding) []bindingGroup {
	var groups []bindingGroup
	index := make(map[keybinds.Action]int)
	for _, b := range bindings {
		if b.Action == keybinds.ActionGoToTopPrepare {
			continue
		}
		if i, ok := index[b.Action]; ok {
			groups[i].keys = append(groups[i].keys, b.Key)
			continue
		}
		index[b.Action] = len(groups)
		groups = append(groups, bindingGroup{action: b.Action, keys: []string{b.Key}})
	}
	return groups
}

var actionDescriptions = map[keybinds.Action]string{
	keybinds.ActionQuitForce:      "Quit immediately",
	keybinds.ActionQuit:           "Quit",
	keybinds.ActionNavigateUp:     "Move up",
	keybinds.ActionNavigateDown:   "Move down",
	keybinds.ActionGoToTop:        "Go to top",
	keybinds.ActionGoToBottom:     "Go to bottom",
	keybinds.ActionSwitchFocus:    "Switch between users and posts",
	keybinds.ActionSelect:         "Select user / view comments of post",
	keybinds.ActionCreatePost:     "Create a post",
	keybinds.ActionRefreshUsers:   "Reload users",
	keybinds.ActionFilterUsers:    "Filter users",
	keybinds.ActionCopyPost:       "Copy post as JSON",
	keybinds.ActionOpenHelp:       "Help",
	keybinds.ActionShowError:      "Show full error",
	keybinds.ActionScrollLogLeft:  "Scroll workflow left",
	keybinds.ActionScrollLogRight: "Scroll workflow right",
	keybinds.ActionTextSubmit:     "Apply",
	keybinds.ActionTextCancel:     "Clear and close",
	keybinds.ActionNextField:      "Next field",
	keybinds.ActionSubmitPost:     "Create Post",
	keybinds.ActionCloseModal:     "Close",
	keybinds.ActionScrollUp:       "Scroll up",
	keybinds.ActionScrollDown:     "Scroll down",
	keybinds.ActionPageUp:         "Page up",
	keybinds.ActionPageDown:       "Page down",
}

func actionDescription(a keybinds.Action) string {
	if d, ok := actionDescriptions[a]; ok {
		return d
	}
	return string(a)
}
