/*
Package workflow owns the dashboard state and sequences API calls.

# Overview

A Controller holds everything the dashboard shows: users, the selected user,
posts, the create-post draft, per-resource loading flags, the single error
message, the workflow log and the visibility of the two modals. It turns user
actions into API calls and folds the results back into that state.

# Transitions

Every resource class moves Idle -> Loading -> {Success, Failed} and only
returns to Loading when a new request of the same class is issued. There is no
retry and no backoff.

	Startup        GET /users              "Failed to fetch Users: <reason>"
	Select user    GET /posts?userId={id}  "Failed to fetch Posts"
	Create post    POST /posts             "Failed to create a post"
	View comments  GET /comments?postId=   "Failed to fetch comments"

The most recent failure owns the error banner. Any successful call clears it.

# Two-Phase Calls

Interactive front ends must flip loading flags before the network call starts
and apply results on their own event loop. Each action is therefore split:

	ticket, ok := c.BeginSelectUser(3) // loading.posts = true
	outcome := c.Run(ctx, ticket)      // network only, no state access
	c.Settle(outcome)                  // state update, loading released

The blocking helpers (FetchUsers, SelectUser, CreatePost, ViewComments) run
all three phases in sequence for headless callers.

# Ordering

Concurrent requests of the same class are not ordered: whichever settles last
wins the display. WithStaleGuard opts into per-class sequence numbers so that
settlements of superseded list fetches are dropped instead.

# Thread Safety

All state access is guarded by a sync.RWMutex. Getters return copies.
*/
package workflow
