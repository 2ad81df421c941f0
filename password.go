package accounts

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor applied to new passwords. Named
// so it can be tuned without touching the registration flow.
const DefaultHashCost = 10

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.New("error hashing password")
	}
	return string(hash), nil
}

func hashMatchesPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
