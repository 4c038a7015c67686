/*
Package keybinds provides customizable keyboard binding management for the
dashboard.

# Key Concepts

Contexts:
  - Global: bindings available everywhere (ctrl+c)
  - Normal: the dashboard with its users and posts panels
  - UserFilter: the fuzzy filter input over the user list
  - CreatePost, Comments, Help, Error: one per modal

A key bound in a specific context shadows the same key in the global context.

Multi-key sequences are supported for "gg": the first "g" is bound to
ActionGoToTopPrepare and the full sequence to ActionGoToTop.

# Configuration File Format

User overrides live in ~/.apichain/keybinds.json. Comments are allowed. Each
section maps an action to a comma-separated key list; listing an action
replaces all of its default keys in that section:

	{
	  "version": "1.0",
	  // vim users feel at home already
	  "normal": {
	    "create_post": "n,c",
	    "copy_post": "Y"
	  },
	  "comments": {
	    "close_modal": "esc,q"
	  }
	}

# Usage

	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}
	if action, ok := registry.Match(keybinds.ContextNormal, msg.String()); ok {
		// dispatch action
	}
*/
package keybinds
