package models

// User is the authenticated identity resolved by the auth
// collaborator. The id is opaque to this library: it is only ever
// compared for equality and used to scope remote rows.
type User struct {
	// ID is the identity provider's subject identifier.
	ID string `json:"id"`

	// Email is the display identity and may be empty for providers
	// that do not expose one.
	Email string `json:"email,omitempty"`
}
