package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/apichain/internal/keybinds"
	"github.com/studiowebux/apichain/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"} // Dark blue / Blue
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
	colorIndigo = lipgloss.AdaptiveColor{Light: "#4b0082", Dark: "#8c7cff"} // Indigo / Light indigo
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleLink = lipgloss.NewStyle().
			Foreground(colorIndigo)

	styleErrorBanner = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorRed).
				Foreground(colorRed).
				Padding(0, 1)
)

// renderMain renders the dashboard (header, workflow strip, users and posts panels)
func (m *Model) renderMain() string {
	if m.width == 0 {
		return ""
	}

	sections := []string{m.renderHeader()}
	if banner := m.renderErrorBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.renderWorkflowStrip())

	used := lipgloss.Height(lipgloss.JoinVertical(lipgloss.Left, sections...))
	panelHeight := max(5, m.height-used-StatusBarLines-ViewportBorderWidth)

	usersWidth := m.usersPanelWidth()
	postsWidth := max(20, m.width-usersWidth-ViewportBorderWidth*2)

	usersBox := m.panelStyle(panelUsers).
		Width(usersWidth).
		Height(panelHeight).
		Render(m.renderUsersPanel(usersWidth-2, panelHeight))
	postsBox := m.panelStyle(panelPosts).
		Width(postsWidth).
		Height(panelHeight).
		Render(m.renderPostsPanel(postsWidth-2, panelHeight))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, usersBox, postsBox)
	sections = append(sections, panels, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// usersPanelWidth returns the users panel width (40% of width, min 30 chars)
func (m *Model) usersPanelWidth() int {
	w := max(UserPanelMinWidth, m.width*40/100)
	if m.width < 80 {
		w = m.width / 2
	}
	return max(10, w-ViewportBorderWidth)
}

func (m *Model) panelStyle(panel string) lipgloss.Style {
	borderColor := colorGray
	if m.focusedPanel == panel {
		borderColor = colorGreen
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)
}

func (m *Model) renderHeader() string {
	title := styleTitle.Render("API Chaining Dashboard")
	info := m.baseURL
	if m.profileName != "" {
		info = fmt.Sprintf("%s (%s)", m.baseURL, m.profileName)
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title) + "\n" +
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styleSubtle.Render(info))
}

// renderErrorBanner renders the current error, or "" when there is none
func (m *Model) renderErrorBanner() string {
	msg := m.ctrl.ErrorMessage()
	if msg == "" {
		return ""
	}
	hint := m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionShowError)
	text := truncateRunes(msg, max(10, m.width-len(hint)-20))
	return styleErrorBanner.Width(m.width - ViewportBorderWidth).
		Render(text + styleSubtle.Render(fmt.Sprintf("  (%s: details)", hint)))
}

// renderWorkflowStrip renders one cell per workflow step, scrolled by logOffset
func (m *Model) renderWorkflowStrip() string {
	steps := m.ctrl.Steps()
	title := styleTitle.Render("API Workflow") + styleSubtle.Render(fmt.Sprintf(" (%d calls)", len(steps)))
	if len(steps) == 0 {
		return title + "\n" + styleSubtle.Render("No API calls yet")
	}

	perRow := m.stepsPerRow()
	start := min(m.logOffset, len(steps)-1)
	end := min(len(steps), start+perRow)

	cells := make([]string, 0, end-start+2)
	if start > 0 {
		cells = append(cells, styleSubtle.Render(fmt.Sprintf("◀ %d", start)))
	}
	for i, step := range steps[start:end] {
		cells = append(cells, renderStepCell(start+i+1, step))
	}
	if end < len(steps) {
		cells = append(cells, styleSubtle.Render(fmt.Sprintf("%d ▶", len(steps)-end)))
	}
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

func renderStepCell(n int, step types.WorkflowStep) string {
	label := truncateRunes(step.API, StepCellWidth-4)
	content := styleBold.Render(fmt.Sprintf("%d. %s", n, label)) + "\n" +
		styleSubtle.Render(fmt.Sprintf("Response Data Length: %d", step.Count))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Width(StepCellWidth).
		Render(content)
}

// stepsPerRow is how many workflow cells fit on one line, leaving room for arrows
func (m *Model) stepsPerRow() int {
	return max(1, (m.width-10)/(StepCellWidth+ViewportBorderWidth))
}

func (m *Model) maxLogOffset() int {
	return max(0, len(m.ctrl.Steps())-m.stepsPerRow())
}

func (m *Model) renderUsersPanel(width, height int) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Select a User"))
	b.WriteString("\n")

	switch {
	case m.mode == ModeUserFilter:
		b.WriteString(m.filterInput.View())
	case m.filterPattern != "":
		b.WriteString(styleWarning.Render("/" + m.filterPattern))
	default:
		b.WriteString(styleSubtle.Render("/ to filter"))
	}
	b.WriteString("\n\n")

	if m.ctrl.Loading().Users {
		b.WriteString(m.spinner.View() + " Loading users...")
		return b.String()
	}

	users := m.visibleUsers()
	if len(users) == 0 {
		if m.filterPattern != "" {
			b.WriteString(styleSubtle.Render("No users match"))
		} else {
			b.WriteString(styleSubtle.Render("No users loaded"))
		}
		return b.String()
	}

	selectedID, hasSelection := m.ctrl.SelectedUserID()

	// Two lines per user, keep the cursor in view
	visible := max(1, (height-4)/2)
	start := 0
	if m.userIndex >= visible {
		start = m.userIndex - visible + 1
	}
	end := min(len(users), start+visible)

	for i := start; i < end; i++ {
		u := users[i]
		marker := "  "
		nameStyle := styleBold
		if hasSelection && u.ID == selectedID {
			marker = styleSuccess.Render("● ")
			nameStyle = styleSuccess.Bold(true)
		}
		name := nameStyle.Render(truncateRunes(u.Name, width-4))
		email := "  " + styleSubtle.Render(truncateRunes(u.Email, width-4))
		line := marker + name
		if i == m.userIndex && m.focusedPanel == panelUsers {
			line = styleSelected.Render(marker + truncateRunes(u.Name, width-4))
		}
		b.WriteString(line + "\n" + email)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) renderPostsPanel(width, height int) string {
	var b strings.Builder

	title := "Posts"
	if user, ok := m.selectedUser(); ok {
		title = fmt.Sprintf("Posts of %s", user.Name)
	}
	createKey := m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionCreatePost)
	header := styleTitle.Render(truncateRunes(title, max(5, width-22)))
	button := styleLink.Render(fmt.Sprintf("[%s] + Create a Post", createKey))
	gap := max(1, width-lipgloss.Width(header)-lipgloss.Width(button))
	b.WriteString(header + strings.Repeat(" ", gap) + button)
	b.WriteString("\n\n")

	if m.ctrl.Loading().Posts {
		b.WriteString(m.spinner.View() + " Loading posts...")
		return b.String()
	}

	posts := m.ctrl.Posts()
	if len(posts) == 0 {
		b.WriteString(styleSubtle.Render("Select user to view the post or create a post"))
		return b.String()
	}

	visible := max(1, (height-3)/PostCardLines)
	start := 0
	if m.postIndex >= visible {
		start = m.postIndex - visible + 1
	}
	end := min(len(posts), start+visible)

	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cards = append(cards, m.renderPostCard(posts[i], width-2, i == m.postIndex))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	return b.String()
}

func (m *Model) renderPostCard(post types.Post, width int, focused bool) string {
	borderColor := colorGray
	if focused && m.focusedPanel == panelPosts {
		borderColor = colorGreen
	}

	title := styleBold.Render(postCardTitle(post.Title))
	body := lipgloss.NewStyle().
		Width(width - 2).
		MaxHeight(2).
		Render(postCardBody(post.Body))
	footer := ""
	if focused && m.focusedPanel == panelPosts {
		key := m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionSelect)
		footer = "\n" + styleLink.Render(fmt.Sprintf("View Comments (%s)", key))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width).
		Render(title + "\n" + body + footer)
}

// renderStatusBar renders the status bar at the bottom
func (m *Model) renderStatusBar() string {
	left := styleSubtle.Render("[" + m.mode.String() + "]")

	loading := m.ctrl.Loading()
	switch {
	case m.statusMsg != "":
		left += " " + m.statusMsg
	case loading.Comments:
		left += " " + m.spinner.View() + " Loading comments..."
	case loading.Any():
		left += " " + m.spinner.View() + " Working..."
	}

	hint := m.keybinds.GetBindingString(keybinds.ContextNormal, keybinds.ActionOpenHelp)
	right := fmt.Sprintf("%s: help", hint)
	if m.version != "" {
		right += " | apichain " + m.version
	}
	right = styleSubtle.Render(right)

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// postCardTitle shortens a post title for the card, "..." only when it was cut
func postCardTitle(title string) string {
	return truncateRunes(title, PostTitleMaxRunes)
}

// postCardBody shortens a post body for the card, "..." only when it was cut
func postCardBody(body string) string {
	return truncateRunes(strings.ReplaceAll(body, "\n", " "), PostBodyMaxRunes)
}

// truncateRunes keeps at most n runes of s and appends "..." when s was longer
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
