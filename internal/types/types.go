package types

import "time"

// User represents a user record from GET /users
type User struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty"`
}

// Post represents a post record from GET /posts or POST /posts
type Post struct {
	ID     int    `json:"id" yaml:"id"`
	UserID int    `json:"userId" yaml:"userId"`
	Title  string `json:"title" yaml:"title"`
	Body   string `json:"body" yaml:"body"`
}

// Comment represents a comment record from GET /comments
type Comment struct {
	ID     int    `json:"id" yaml:"id"`
	PostID int    `json:"postId" yaml:"postId"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Email  string `json:"email" yaml:"email"`
	Body   string `json:"body" yaml:"body"`
}

// DraftPost is the in-progress content of the create-post form
type DraftPost struct {
	Title  string `json:"title" yaml:"title"`
	Body   string `json:"body" yaml:"body"`
	UserID *int   `json:"userId" yaml:"userId"` // nil until a user is attached
}

// IsEmpty reports whether the draft has no content and no user
func (d DraftPost) IsEmpty() bool {
	return d.Title == "" && d.Body == "" && d.UserID == nil
}

// WorkflowStep is one entry of the workflow log
type WorkflowStep struct {
	API         string    `json:"api" yaml:"api"`
	Data        []any     `json:"data" yaml:"data"`
	Count       int       `json:"count" yaml:"count"`
	CompletedAt time.Time `json:"completedAt" yaml:"completedAt"`
}

// Resource identifies one of the independently tracked resource classes
type Resource int

const (
	ResourceUsers Resource = iota
	ResourcePosts
	ResourceComments
)

// String returns the lowercase resource class name
func (r Resource) String() string {
	switch r {
	case ResourceUsers:
		return "users"
	case ResourcePosts:
		return "posts"
	case ResourceComments:
		return "comments"
	default:
		return "unknown"
	}
}

// Resources lists every resource class in display order
var Resources = []Resource{ResourceUsers, ResourcePosts, ResourceComments}

// LoadingState holds one loading flag per resource class
type LoadingState struct {
	Users    bool `json:"users" yaml:"users"`
	Posts    bool `json:"posts" yaml:"posts"`
	Comments bool `json:"comments" yaml:"comments"`
}

// Get returns the flag for a resource class
func (l LoadingState) Get(r Resource) bool {
	switch r {
	case ResourceUsers:
		return l.Users
	case ResourcePosts:
		return l.Posts
	case ResourceComments:
		return l.Comments
	}
	return false
}

// Any reports whether any request is in flight
func (l LoadingState) Any() bool {
	return l.Users || l.Posts || l.Comments
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
