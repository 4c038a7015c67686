package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal     Context = "global"      // Available everywhere
	ContextNormal     Context = "normal"      // Dashboard with users and posts panels
	ContextUserFilter Context = "user_filter" // Fuzzy filter input over the user list
	ContextCreatePost Context = "create_post" // Create-post modal form
	ContextComments   Context = "comments"    // Comments modal
	ContextHelp       Context = "help"        // Help viewer
	ContextError      Context = "error"       // Error detail modal
)

const (
	// Global actions
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Normal mode
	ActionQuit           Action = "quit"             // Quit application
	ActionNavigateUp     Action = "navigate_up"      // Move up one item
	ActionNavigateDown   Action = "navigate_down"    // Move down one item
	ActionGoToTop        Action = "go_to_top"        // Go to first item
	ActionGoToBottom     Action = "go_to_bottom"     // Go to last item
	ActionSwitchFocus    Action = "switch_focus"     // Switch between users and posts panels
	ActionSelect         Action = "select"           // Select user or view comments of the post
	ActionCreatePost     Action = "create_post"      // Open the create-post modal
	ActionRefreshUsers   Action = "refresh_users"    // Fetch the user list again
	ActionFilterUsers    Action = "filter_users"     // Start fuzzy filtering users
	ActionCopyPost       Action = "copy_post"        // Copy the focused post as JSON
	ActionOpenHelp       Action = "open_help"        // Open help
	ActionShowError      Action = "show_error"       // Show the full error message
	ActionScrollLogLeft  Action = "scroll_log_left"  // Scroll the workflow strip left
	ActionScrollLogRight Action = "scroll_log_right" // Scroll the workflow strip right

	// Text input
	ActionTextSubmit Action = "text_submit" // Accept input
	ActionTextCancel Action = "text_cancel" // Discard input

	// Create-post form
	ActionNextField  Action = "next_field"  // Move between title and body
	ActionSubmitPost Action = "submit_post" // Submit the draft

	// Modals and viewers
	ActionCloseModal Action = "close_modal" // Close current modal
	ActionScrollUp   Action = "scroll_up"   // Scroll viewport up
	ActionScrollDown Action = "scroll_down" // Scroll viewport down
	ActionPageUp     Action = "page_up"     // Scroll one page up
	ActionPageDown   Action = "page_down"   // Scroll one page down

	// First 'g' in 'gg' sequence
	ActionGoToTopPrepare Action = "go_to_top_prepare"
)

// KnownActions lists every action a user may bind
var KnownActions = []Action{
	ActionQuitForce,
	ActionQuit, ActionNavigateUp, ActionNavigateDown, ActionGoToTop, ActionGoToBottom,
	ActionSwitchFocus, ActionSelect, ActionCreatePost, ActionRefreshUsers, ActionFilterUsers,
	ActionCopyPost, ActionOpenHelp, ActionShowError, ActionScrollLogLeft, ActionScrollLogRight,
	ActionTextSubmit, ActionTextCancel,
	ActionNextField, ActionSubmitPost,
	ActionCloseModal, ActionScrollUp, ActionScrollDown, ActionPageUp, ActionPageDown,
	ActionGoToTopPrepare,
}

// IsKnownAction reports whether a is a bindable action
func IsKnownAction(a Action) bool {
	for _, known := range KnownActions {
		if known == a {
			return true
		}
	}
	return false
}
