package models

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// FirstName and LastName form the user's display name.
	FirstName string
	LastName  string

	// Email is the user's email address, stored lowercased.
	// Unique among active (non-deleted) users; a soft-deleted user's
	// email may be registered again.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// The plaintext password is never stored.
	PasswordHash string

	// CreatedAt is the unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the unix timestamp of the last mutation.
	UpdatedAt int64

	// DeletedAt is the unix timestamp of the soft delete, or nil while
	// the account is active.
	DeletedAt *int64
}

// Active reports whether the user has not been soft-deleted.
func (u *User) Active() bool {
	return u.DeletedAt == nil
}
