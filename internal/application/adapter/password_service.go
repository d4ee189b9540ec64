package adapter

// PasswordService hashes and checks account passwords.
type PasswordService interface {
	HashPassword(password string) (string, error)

	// VerifyPassword returns an error unless password matches hashedPassword.
	VerifyPassword(hashedPassword, password string) error

	// ValidatePasswordStrength rejects passwords registration must not accept.
	// The returned error message is shown to the caller.
	ValidatePasswordStrength(password string) error
}
