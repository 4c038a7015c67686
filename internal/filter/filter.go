// Package filter narrows and reshapes dashboard data: JMESPath expressions over
// JSON output and fuzzy matching over the user list.
package filter

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/apichain/internal/types"
)

// Apply applies filter and query expressions to a JSON document
// Filter narrows results (e.g., workflow[?count > `0`])
// Query transforms/selects fields (e.g., [].api)
func Apply(body string, filter string, query string) (string, error) {
	result := body

	// Apply filter first (if specified)
	if filter != "" {
		filtered, err := applyJMESPath(result, filter)
		if err != nil {
			return "", fmt.Errorf("failed to apply filter: %w", err)
		}
		result = filtered
	}

	if query != "" {
		queried, err := applyJMESPath(result, query)
		if err != nil {
			return "", fmt.Errorf("failed to apply query: %w", err)
		}
		result = queried
	}

	return result, nil
}

// Search evaluates a JMESPath expression against any JSON-encodable value
func Search(v any, expression string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(doc)
	if err != nil {
		return nil, fmt.Errorf("JMESPath search failed: %w", err)
	}
	return result, nil
}

// applyJMESPath applies a JMESPath expression to a JSON string
func applyJMESPath(jsonStr string, expression string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	// Handle null result
	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(output), nil
}

// IsValidJMESPath checks if an expression is valid JMESPath syntax
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

type userSource []types.User

func (s userSource) String(i int) string { return s[i].Name + " " + s[i].Email }
func (s userSource) Len() int            { return len(s) }

// FuzzyUsers returns the users whose name or email fuzzy-match pattern, best
// match first. An empty pattern returns all users in their original order.
func FuzzyUsers(users []types.User, pattern string) []types.User {
	if pattern == "" {
		out := make([]types.User, len(users))
		copy(out, users)
		return out
	}

	matches := fuzzy.FindFrom(pattern, userSource(users))
	out := make([]types.User, 0, len(matches))
	for _, m := range matches {
		out = append(out, users[m.Index])
	}
	return out
}
