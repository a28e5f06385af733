package security

import "golang.org/x/crypto/bcrypt"

// bcrypt cost used for every stored credential.
const hashCost = 10

// HashPassword hashes a plain text password with bcrypt. Each call salts
// independently, so two hashes of the same password differ.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
