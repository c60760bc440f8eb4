package types

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address, unique across all users.
	Email string `json:"email" db:"email"`
}

// UserPatch carries a partial update for a user. A nil field leaves the
// stored value unchanged; presence is tracked by the pointer, not the value.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}
