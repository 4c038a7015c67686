package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.apichain)
	ConfigDir string

	// ConfigFile is the default config.yaml
	ConfigFile string

	// KeybindsFile holds user key binding overrides
	KeybindsFile string

	// LogFile is where the zap logger writes
	LogFile string

	// DatabasePath is the SQLite database file for the workflow audit store
	DatabasePath string
)

const defaultConfig = `# apichain configuration
# Every key can also be set with an APICHAIN_ environment variable
# (APICHAIN_BASE_URL, APICHAIN_TIMEOUT, ...) or a command line flag.

base-url: https://jsonplaceholder.typicode.com
timeout: 30s
log-level: info

# Record every workflow step in the local SQLite audit store
audit: false

# Ignore responses superseded by a newer request of the same kind
stale-guard: false

# profiles:
#   - name: local
#     baseUrl: http://localhost:3000
#     timeout: 5s
#     headers:
#       X-Env: dev
`

// Initialize sets up the configuration directory and files
// It creates ~/.apichain/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".apichain")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
	LogFile = filepath.Join(ConfigDir, "apichain.log")
	DatabasePath = filepath.Join(ConfigDir, "apichain.db")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create a commented default config if it doesn't exist
	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConfigFile, []byte(defaultConfig), FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}
