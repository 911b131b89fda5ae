package main

import "github.com/google/uuid"

// newSessionID mints a fresh session id, grounded on the teacher's use of
// google/uuid for session/task identifiers throughout its agent package.
func newSessionID() string {
	return uuid.NewString()
}
