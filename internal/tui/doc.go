/*
Package tui implements the terminal dashboard for apichain.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: UI-only state (focus, cursors, inputs, viewports)
  - Update: Processes messages and returns commands
  - View: Renders the controller state plus UI state to the terminal

Domain state (users, posts, draft, loading flags, error, workflow log and
modal visibility) lives in a workflow.Controller. The Model never mutates it
directly; it calls the controller's Begin/Settle pairs and setters.

# Key Components

  - model.go: Model struct, Update and View
  - actions.go: Commands that run API requests and clipboard copies
  - keys.go: Keyboard input handling and keybind routing
  - render.go: Dashboard rendering (header, workflow strip, panels)
  - modals.go: Create-post, comments, help and error modals
  - help.go: Help markdown built from the keybind registry, rendered with glamour

# Concurrency

API calls run inside tea.Cmd goroutines and only call Controller.Run, which
touches no state. Their outcomes come back as outcomeMsg and are settled on
the Update goroutine, so every state transition happens in one place.
*/
package tui
