/*
Package api is the HTTP client for the JSONPlaceholder-style fixture API.

# Overview

The client translates the four logical resource requests into HTTP calls
against one fixed base URL:

	GET  {base}/users
	GET  {base}/posts?userId={id}
	GET  {base}/comments?postId={id}
	POST {base}/posts

There is no retry and no caching. Each call either decodes the JSON response
into the matching records from package types or returns a *NetworkError.

# Errors

NetworkError covers connection failures, timeouts and non-2xx responses. Its
message is what the dashboard shows after "Failed to fetch Users: ":
  - "Request failed with status code 404" for HTTP errors
  - a categorized transport message otherwise ("Connection refused - ...")

# Options

	client, err := api.NewClient("https://jsonplaceholder.typicode.com",
		api.WithTimeout(10*time.Second),
		api.WithToken(os.Getenv("APICHAIN_TOKEN")),
		api.WithLogger(logger),
	)

	users, err := client.ListUsers(ctx)

# Thread Safety

Client holds no mutable state after construction and is safe for concurrent
use.
*/
package api
