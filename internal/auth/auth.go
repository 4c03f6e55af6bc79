package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash stored for a demonstration user's
// password. The store itself treats the hash as an opaque string.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}
