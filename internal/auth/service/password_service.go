package service

//go:generate mockgen -destination=../../mocks/mock_password_hasher.go -package=mocks github.com/chris743/db-api/internal/auth/service PasswordHasher

import (
	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// PasswordService wraps bcrypt with a configurable work factor. The salt is
// embedded in the hash output, so verification needs no extra state.
type PasswordService struct {
	workFactor int
}

func NewPasswordService(workFactor int) *PasswordService {
	if workFactor < bcrypt.MinCost || workFactor > bcrypt.MaxCost {
		workFactor = bcrypt.DefaultCost
	}

	return &PasswordService{workFactor: workFactor}
}

func (ps *PasswordService) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), ps.workFactor)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// Verify reports whether password matches hash. A malformed hash counts as a
// mismatch rather than an error, so it always lands on the caller's failure
// path.
func (ps *PasswordService) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
