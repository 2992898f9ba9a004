package ports

// PasswordHasher is the opaque one-way credential capability. Encode is
// allowed to be slow; Matches must not reveal anything beyond the boolean.
type PasswordHasher interface {
	Encode(plaintext string) (string, error)
	Matches(plaintext, hash string) bool
}
