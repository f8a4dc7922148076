// Package sessions maintains the server-side binding from an opaque session
// id to a user id. The binding is the only login state the service keeps;
// everything else about a request is stateless.
package sessions

import "context"

// Store binds session ids to user ids for the configured validity duration.
type Store interface {
	// Start creates a new binding for userID and returns the opaque session id.
	Start(ctx context.Context, userID string) (string, error)

	// GetUserID resolves a session id. Unknown or expired sessions return
	// common.ErrorNotFound.
	GetUserID(ctx context.Context, sessionID string) (string, error)

	// End destroys the binding. Ending an unknown session is not an error.
	End(ctx context.Context, sessionID string) error
}
