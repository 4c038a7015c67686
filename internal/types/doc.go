/*
Package types defines the core data structures shared across apichain.

# Overview

The types package provides the records returned by the fixture API and the
state the workflow controller owns:
  - User, Post and Comment records
  - DraftPost for the create-post form
  - WorkflowStep entries of the workflow log
  - LoadingState flags per resource class

# Records

User, Post and Comment mirror the JSONPlaceholder contract. Extra fields the
fixture returns for users (username, phone, website) are decoded when present
and ignored by the controller.

	{
	  "id": 1,
	  "userId": 1,
	  "title": "sunt aut facere",
	  "body": "quia et suscipit"
	}

# Workflow Log

WorkflowStep records one completed network call:
  - API is the method and path label ("GET /posts?userId=1")
  - Data holds the result records (one record for POST /posts)
  - Count is len(Data), shown as "Response Data Length"

# Resource Classes

Loading and error state are tracked along three independent axes:
ResourceUsers, ResourcePosts and ResourceComments.

# Field Tags

All records carry JSON and YAML tags so the headless runner can print them in
either format.
*/
package types
