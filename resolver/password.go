package resolver

import "golang.org/x/crypto/bcrypt"

// passwordCost is the bcrypt work factor for stored login passwords. The cost
// is embedded in each hash, so existing hashes keep verifying if this ever
// changes; treat it as versioned anyway and never lower it silently.
const passwordCost = 10

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports whether the plaintext matches the stored hash. A
// malformed hash is a mismatch, never an error.
func ComparePassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
