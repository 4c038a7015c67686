package tui

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Modal Dimensions - Standard margins for modal dialogs
	ModalWidthMargin       = 6  // Standard horizontal margin (m.width - 6)
	ModalHeightMargin      = 3  // Standard vertical margin (m.height - 3)
	ModalWidthMarginNarrow = 10 // Narrow horizontal margin for focused modals (m.width - 10)
	ModalHeightMarginSmall = 2  // Small vertical margin (m.height - 2)

	// Viewport Padding and Borders
	ViewportBorderWidth       = 2 // Width consumed by borders
	ViewportPaddingHorizontal = 4 // Horizontal padding (left + right)

	// Modal Content Calculations
	ModalOverheadLines   = 6 // Title (2) + padding (2) + border (2)
	ModalOverheadMinimal = 4 // Border + title for minimal modals
	ModalFooterLines     = 2 // Footer + blank line

	// Dashboard
	HeaderLines        = 2  // Title + base URL line
	WorkflowStripLines = 6  // Strip title + bordered cells (4) + spacing
	StatusBarLines     = 1  // Status bar at the bottom
	StepCellWidth      = 30 // Width of one workflow log cell
	UserPanelMinWidth  = 30 // Minimum width of the users panel
	PostCardLines      = 5  // Border (2) + title + two body lines

	// Create-post form
	CreatePostBodyHeight = 6   // Lines in the body textarea
	TitleCharLimit       = 200 // Maximum title length

	// Text truncation
	PostTitleMaxRunes = 20  // Post card title length before "..."
	PostBodyMaxRunes  = 100 // Post card body length before "..."
	StatusMaxChars    = 100 // Status line length before "..."
)

// Panel names used for focusedPanel
const (
	panelUsers = "users"
	panelPosts = "posts"
)

// Create-post form fields
const (
	fieldTitle = iota
	fieldBody
)
