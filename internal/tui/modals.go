package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/apichain/internal/keybinds"
)

// renderModal renders a centered modal box with a title, content and an optional footer
func (m *Model) renderModal(title, content, footer string, width int) string {
	fullContent := styleTitle.Render(title) + "\n\n" + content
	if footer != "" {
		fullContent += "\n\n" + styleSubtle.Render(footer)
	}

	modalBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Width(width).
		Padding(1, 2).
		Render(fullContent)

	// For small terminals, don't center - just render
	if width >= m.width-2 {
		return modalBox
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalBox)
}

// renderViewportModal renders a modal whose content scrolls in view
func (m *Model) renderViewportModal(title string, view viewport.Model, footer string) string {
	scroll := ""
	if view.TotalLineCount() > view.Height {
		scroll = styleSubtle.Render(fmt.Sprintf(" %3.f%%", view.ScrollPercent()*100))
	}
	return m.renderModal(title+scroll, view.View(), footer, m.modalWidth())
}

func (m *Model) renderCreatePostModal() string {
	var b strings.Builder

	label := func(s string, field int) string {
		if m.createField == field {
			return styleSuccess.Render("▸ " + s)
		}
		return styleSubtle.Render("  " + s)
	}

	b.WriteString(label("Title", fieldTitle) + "\n")
	b.WriteString(m.titleInput.View() + "\n\n")
	b.WriteString(label("Body", fieldBody) + "\n")
	b.WriteString(m.bodyInput.View() + "\n\n")

	if user, ok := m.selectedUser(); ok && m.ctrl.Draft().UserID != nil && *m.ctrl.Draft().UserID == user.ID {
		b.WriteString(styleSubtle.Render(fmt.Sprintf("Author: %s (#%d)", user.Name, user.ID)))
	} else if id := m.ctrl.Draft().UserID; id != nil {
		b.WriteString(styleSubtle.Render(fmt.Sprintf("Author: user #%d", *id)))
	} else {
		b.WriteString(styleWarning.Render("Author: none (select a user first to attach one)"))
	}

	if m.ctrl.Loading().Posts {
		b.WriteString("\n\n" + m.spinner.View() + " Creating post...")
	} else if msg := m.ctrl.ErrorMessage(); msg != "" {
		b.WriteString("\n\n" + styleError.Render(truncateRunes(msg, m.modalWidth()-ViewportPaddingHorizontal*2)))
	}

	footer := fmt.Sprintf("%s: Create Post | %s: next field | %s: Cancel",
		m.keybinds.GetBindingString(keybinds.ContextCreatePost, keybinds.ActionSubmitPost),
		m.keybinds.GetBindingString(keybinds.ContextCreatePost, keybinds.ActionNextField),
		m.keybinds.GetBindingString(keybinds.ContextCreatePost, keybinds.ActionCloseModal),
	)
	return m.renderModal("Create a Post", b.String(), footer, m.modalWidth())
}

// commentsContent renders the comments list: body, then the author's email
func (m *Model) commentsContent() string {
	comments := m.ctrl.Comments()
	if len(comments) == 0 {
		return "No comments available."
	}

	width := max(10, m.modalView.Width)
	parts := make([]string, 0, len(comments))
	for _, c := range comments {
		body := lipgloss.NewStyle().Width(width).Render(c.Body)
		parts = append(parts, body+"\n"+styleBold.Inherit(styleLink).Render(c.Email))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderCommentsModal() string {
	footer := fmt.Sprintf("j/k: scroll | %s: Close",
		m.keybinds.GetBindingString(keybinds.ContextComments, keybinds.ActionCloseModal))
	return m.renderViewportModal("Comments", m.modalView, footer)
}

func (m *Model) renderHelpModal() string {
	footer := fmt.Sprintf("j/k: scroll | %s: Close",
		m.keybinds.GetBindingString(keybinds.ContextHelp, keybinds.ActionCloseModal))
	return m.renderViewportModal("Help", m.helpView, footer)
}

// errorContent wraps the full error message for the error modal
func (m *Model) errorContent() string {
	width := max(10, m.modalView.Width)
	return styleError.Width(width).Render(m.ctrl.ErrorMessage())
}

func (m *Model) renderErrorDetailModal() string {
	footer := fmt.Sprintf("%s: Close",
		m.keybinds.GetBindingString(keybinds.ContextError, keybinds.ActionCloseModal))
	return m.renderViewportModal("Error Details", m.modalView, footer)
}
