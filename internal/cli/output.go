package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// formatOutput formats the report based on the output format
func formatOutput(report *Report, format, query string) (string, error) {
	if query != "" {
		data, err := json.Marshal(report)
		if err != nil {
			return "", err
		}
		result, err := queryReport(string(data), query)
		if err != nil {
			return "", err
		}
		return result + "\n", nil
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "text", "":
		return formatText(report), nil

	default:
		return "", fmt.Errorf("unknown output format %q (use json, yaml or text)", format)
	}
}

// formatText renders a compact human summary of the report
func formatText(report *Report) string {
	var sb strings.Builder

	sb.WriteString("API Workflow\n")
	if len(report.Workflow) == 0 {
		sb.WriteString("  (no calls completed)\n")
	}
	for i, step := range report.Workflow {
		fmt.Fprintf(&sb, "  %d. %-28s Response Data Length: %d\n", i+1, step.API, step.Count)
	}

	if report.SelectedUserID != nil {
		name := fmt.Sprintf("#%d", *report.SelectedUserID)
		for _, u := range report.Users {
			if u.ID == *report.SelectedUserID {
				name = fmt.Sprintf("%s <%s> (#%d)", u.Name, u.Email, u.ID)
				break
			}
		}
		fmt.Fprintf(&sb, "\nSelected user: %s\n", name)
	} else {
		fmt.Fprintf(&sb, "\nUsers: %d loaded\n", len(report.Users))
	}

	if len(report.Posts) > 0 {
		fmt.Fprintf(&sb, "\nPosts (%d)\n", len(report.Posts))
		for _, p := range report.Posts {
			fmt.Fprintf(&sb, "  #%-4d %s\n", p.ID, shorten(p.Title, 60))
		}
	}

	for _, postID := range sortedPostIDs(report.Comments) {
		comments := report.Comments[postID]
		fmt.Fprintf(&sb, "\nComments of post #%d (%d)\n", postID, len(comments))
		if len(comments) == 0 {
			sb.WriteString("  No comments available.\n")
		}
		for _, c := range comments {
			fmt.Fprintf(&sb, "  %s: %s\n", c.Email, shorten(c.Body, 60))
		}
	}

	if report.Error != "" {
		fmt.Fprintf(&sb, "\nError: %s\n", report.Error)
	}

	return sb.String()
}

func shorten(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// ANSI color codes
const (
	colorReset = "\x1b[0m"
	colorRed   = "\x1b[31m"
)

// colorize highlights structured output with chroma and marks errors red in text output
func colorize(output, format string, failed bool) string {
	switch format {
	case "json", "yaml":
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, output, format, "terminal256", "monokai"); err != nil {
			return output
		}
		return buf.String()
	default:
		if !failed {
			return output
		}
		idx := strings.LastIndex(output, "\nError: ")
		if idx < 0 {
			return output
		}
		return output[:idx+1] + colorRed + strings.TrimSuffix(output[idx+1:], "\n") + colorReset + "\n"
	}
}

// isTerminal reports whether w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
