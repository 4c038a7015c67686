package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config represents the user's keybinding configuration. Each section maps
// an action to a comma-separated list of keys, e.g. "navigate_down": "down,j".
type Config struct {
	Version    string            `json:"version"`
	Global     map[string]string `json:"global,omitempty"`
	Normal     map[string]string `json:"normal,omitempty"`
	UserFilter map[string]string `json:"user_filter,omitempty"`
	CreatePost map[string]string `json:"create_post,omitempty"`
	Comments   map[string]string `json:"comments,omitempty"`
	Help       map[string]string `json:"help,omitempty"`
	Error      map[string]string `json:"error,omitempty"`
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:     c.Global,
		ContextNormal:     c.Normal,
		ContextUserFilter: c.UserFilter,
		ContextCreatePost: c.CreatePost,
		ContextComments:   c.Comments,
		ContextHelp:       c.Help,
		ContextError:      c.Error,
	}
}

// LoadConfig loads keybinding configuration from a JSON file. Comments and
// trailing commas are allowed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}

	return &config, nil
}

// ApplyConfig applies user configuration to a registry
// An action listed in a section loses its default keys in that section
func ApplyConfig(registry *Registry, config *Config) error {
	for context, bindings := range config.sections() {
		for actionStr, keyList := range bindings {
			action := Action(actionStr)
			if !IsKnownAction(action) {
				return fmt.Errorf("unknown action '%s' in section '%s'", actionStr, context)
			}

			keys := splitKeys(keyList)
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("action '%s' in section '%s': %w", actionStr, context, err)
				}
			}

			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}

	return nil
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()
	if configPath == "" {
		return registry, nil
	}

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
		}

		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}

		if result := NewValidator().ValidateRegistry(registry); result.HasErrors() {
			return nil, fmt.Errorf("invalid keybinds config:\n%s", result.String())
		}
	}
	// If config doesn't exist, that's fine - use defaults

	return registry, nil
}
