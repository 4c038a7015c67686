package api

import "fmt"

// DefaultBaseURL is the public fixture API
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

const (
	// UsersEndpoint lists all users
	UsersEndpoint = "users"
	// PostsEndpoint creates posts
	PostsEndpoint = "posts"
)

// UserPostsEndpoint returns the path listing posts of a user
func UserPostsEndpoint(userID int) string {
	return fmt.Sprintf("posts?userId=%d", userID)
}

// PostCommentsEndpoint returns the path listing comments of a post
func PostCommentsEndpoint(postID int) string {
	return fmt.Sprintf("comments?postId=%d", postID)
}

// Label builds the workflow log label for a call ("GET /users")
func Label(method, endpoint string) string {
	return method + " /" + endpoint
}
