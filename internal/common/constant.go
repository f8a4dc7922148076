// Package common contains shared constants and sentinel errors used across
// the authentication service components.
package common

// SessionCookieName is the HTTP cookie that carries the opaque session id.
const SessionCookieName = "sessionid"
