package accounts

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/xid"
)

// Repository persists accounts. Create is the authoritative gate for email
// uniqueness: a duplicate that slips past the service's pre-check must fail
// here with ErrExistingEmail.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id ID) (*Account, error)
	Create(ctx context.Context, acc *Account) error
	UpdateByID(ctx context.Context, id ID, fields Fields) (*Account, error)
	DeleteByID(ctx context.Context, id ID) (*Account, error)
}

type ID string

// Fields is a partial document merged into an existing account on update.
// The record identifier is never merged, whatever the caller submits.
type Fields map[string]interface{}

type Account struct {
	ID        ID        `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Avatar    string    `bson:"avatar" json:"avatar"`
	Password  string    `bson:"password" json:"-"`
	ImagePath string    `bson:"image" json:"image"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

var (
	ErrNotFound           = errors.New("account not found")
	ErrExistingEmail      = errors.New("email in use")
	ErrSigningToken       = errors.New("error signing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// FieldError is a single validation violation, reported per submitted field.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// The trailing group is required so bare hostnames like "ann@x" fail.
var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$")

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 6

// validateRegistration checks every field and reports all violations
// together rather than stopping at the first.
func validateRegistration(name, email, password string) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(name) == "" {
		errs = append(errs, FieldError{Param: "name", Msg: "Name is required"})
	}

	if !emailRegexp.MatchString(email) {
		errs = append(errs, FieldError{Param: "email", Msg: "Please include a valid email"})
	}

	if len(password) < MinPasswordLen {
		errs = append(errs, FieldError{Param: "password", Msg: "Please enter a password with 6 or more characters"})
	}

	return errs
}

func NewID() ID {
	return ID(xid.New().String())
}

//IsValidID checks if a given id is valid based on the xid library definition of a valid id
// this method should change if we ever change our uid generation library
func IsValidID(id string) bool {
	if _, err := xid.FromString(id); err != nil {
		return false
	}
	return true
}
