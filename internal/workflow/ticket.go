package workflow

import "github.com/studiowebux/apichain/internal/types"

type callKind int

const (
	kindListUsers callKind = iota
	kindListPosts
	kindCreatePost
	kindListComments
)

// Ticket identifies one issued request
type Ticket struct {
	Resource types.Resource
	Label    string // workflow log label, e.g. "GET /posts?userId=1"
	Seq      uint64 // 0 for requests that are never superseded
	UserID   int
	PostID   int
	Draft    types.DraftPost

	kind callKind
}

// Outcome is the result of running a ticket
type Outcome struct {
	Ticket   Ticket
	Users    []types.User
	Posts    []types.Post
	Post     types.Post
	Comments []types.Comment
	Err      error
}
