package hash

import "golang.org/x/crypto/bcrypt"

const (
	cost = 12

	// bcrypt ignores everything past 72 bytes; passwords that agree on
	// the first 72 bytes hash identically.
	maxPasswordLen = 72
)

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword(truncate(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashBytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordLen {
		b = b[:maxPasswordLen]
	}
	return b
}
