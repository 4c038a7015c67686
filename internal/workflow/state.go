package workflow

import "github.com/studiowebux/apichain/internal/types"

// State is a point-in-time copy of everything the dashboard renders
type State struct {
	Users          []types.User         `json:"users" yaml:"users"`
	SelectedUserID *int                 `json:"selectedUserId" yaml:"selectedUserId"`
	Posts          []types.Post         `json:"posts" yaml:"posts"`
	Draft          types.DraftPost      `json:"draft" yaml:"draft"`
	Loading        types.LoadingState   `json:"loading" yaml:"loading"`
	Error          string               `json:"error,omitempty" yaml:"error,omitempty"`
	Workflow       []types.WorkflowStep `json:"workflow" yaml:"workflow"`
	CreatePostOpen bool                 `json:"createPostOpen" yaml:"createPostOpen"`
	Comments       []types.Comment      `json:"comments" yaml:"comments"`
	CommentsOpen   bool                 `json:"commentsOpen" yaml:"commentsOpen"`
}

// Snapshot returns a copy of the whole state
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := State{
		Users:          copySlice(c.users),
		Posts:          copySlice(c.posts),
		Draft:          c.draftCopy(),
		Loading:        c.loading(),
		Error:          c.errMsg,
		Workflow:       copySlice(c.steps),
		CreatePostOpen: c.createOpen,
		Comments:       copySlice(c.comments),
		CommentsOpen:   c.commentsOpen,
	}
	if c.selectedUserID != nil {
		s.SelectedUserID = types.IntPtr(*c.selectedUserID)
	}
	return s
}

// Users returns a copy of the loaded users
func (c *Controller) Users() []types.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.users)
}

// Posts returns a copy of the displayed posts
func (c *Controller) Posts() []types.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.posts)
}

// Comments returns a copy of the comments in the comments view
func (c *Controller) Comments() []types.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.comments)
}

// Steps returns a copy of the workflow log
func (c *Controller) Steps() []types.WorkflowStep {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySlice(c.steps)
}

// SelectedUserID returns the selected user id, or false when none is selected
func (c *Controller) SelectedUserID() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selectedUserID == nil {
		return 0, false
	}
	return *c.selectedUserID, true
}

// Loading returns the loading flags
func (c *Controller) Loading() types.LoadingState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading()
}

func (c *Controller) loading() types.LoadingState {
	return types.LoadingState{
		Users:    c.inFlight[types.ResourceUsers] > 0,
		Posts:    c.inFlight[types.ResourcePosts] > 0,
		Comments: c.inFlight[types.ResourceComments] > 0,
	}
}

// ErrorMessage returns the current error message, empty when there is none
func (c *Controller) ErrorMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Draft returns a copy of the create-post draft
func (c *Controller) Draft() types.DraftPost {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draftCopy()
}

func (c *Controller) draftCopy() types.DraftPost {
	d := types.DraftPost{Title: c.draft.Title, Body: c.draft.Body}
	if c.draft.UserID != nil {
		d.UserID = types.IntPtr(*c.draft.UserID)
	}
	return d
}

// SetDraftTitle sets the draft title
func (c *Controller) SetDraftTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Title = title
}

// SetDraftBody sets the draft body
func (c *Controller) SetDraftBody(body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Body = body
}

// SetDraftUserID attaches the draft to a user; nil detaches it
func (c *Controller) SetDraftUserID(userID *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if userID == nil {
		c.draft.UserID = nil
		return
	}
	c.draft.UserID = types.IntPtr(*userID)
}

// IsCreatePostOpen reports whether the create-post modal is visible
func (c *Controller) IsCreatePostOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.createOpen
}

// OpenCreatePost shows the create-post modal. A draft without a user is
// attached to the selected user.
func (c *Controller) OpenCreatePost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createOpen = true
	if c.draft.UserID == nil && c.selectedUserID != nil {
		c.draft.UserID = types.IntPtr(*c.selectedUserID)
	}
}

// CancelCreatePost hides the create-post modal and keeps the draft
func (c *Controller) CancelCreatePost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createOpen = false
}

// IsCommentsOpen reports whether the comments modal is visible
func (c *Controller) IsCommentsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.commentsOpen
}

// CloseComments hides the comments modal and drops its comments
func (c *Controller) CloseComments() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commentsOpen = false
	c.comments = []types.Comment{}
}

func copySlice[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
