package accounts

import (
	"context"
	"strings"
	"time"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (string, []FieldError, error)
	Login(ctx context.Context, email, password string) (string, error)
	Current(ctx context.Context, callerID ID) (*Account, error)
	UpdateByID(ctx context.Context, id ID, fields Fields) (*Account, error)
	DeleteByID(ctx context.Context, id ID) (*Account, error)
	UpdateCurrent(ctx context.Context, callerID ID, fields Fields) (*Account, error)
}

// RegisterRequest carries the submitted registration form. Password is kept
// only for the duration of the call that hashes it.
type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	ImagePath string `json:"-"`
}

type service struct {
	accounts   Repository
	signingKey []byte
	hashCost   int
	tokenTTL   time.Duration
}

func NewService(accounts Repository, signingKey []byte) Service {
	return &service{
		accounts:   accounts,
		signingKey: signingKey,
		hashCost:   DefaultHashCost,
		tokenTTL:   TokenTTL,
	}
}

// Register runs the registration flow in a fixed order: validate, check the
// email is free, derive the avatar, hash the password and persist, then
// issue a session token. Each stage is an exit point; nothing is persisted
// before validation passes, and a token failure after Create leaves the
// account in place.
func (svc *service) Register(ctx context.Context, req RegisterRequest) (string, []FieldError, error) {
	if violations := validateRegistration(req.Name, req.Email, req.Password); len(violations) > 0 {
		return "", violations, nil
	}

	if acc, err := svc.accounts.FindByEmail(ctx, req.Email); acc != nil && err == nil {
		return "", nil, ErrExistingEmail
	}

	hash, err := hashPassword(req.Password, svc.hashCost)
	if err != nil {
		return "", nil, err
	}

	acc := &Account{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Avatar:    avatarURL(req.Email),
		Password:  hash,
		ImagePath: req.ImagePath,
		CreatedAt: time.Now().UTC(),
	}

	// The pre-check above can lose a race; the store settles it.
	if err := svc.accounts.Create(ctx, acc); err != nil {
		return "", nil, err
	}

	token, err := issueToken(acc.ID, svc.signingKey, svc.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, nil, nil
}

func (svc *service) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := svc.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if !hashMatchesPassword(acc.Password, password) {
		return "", ErrInvalidCredentials
	}

	return issueToken(acc.ID, svc.signingKey, svc.tokenTTL)
}

func (svc *service) Current(ctx context.Context, callerID ID) (*Account, error) {
	return svc.accounts.FindByID(ctx, callerID)
}

func (svc *service) UpdateByID(ctx context.Context, id ID, fields Fields) (*Account, error) {
	return svc.accounts.UpdateByID(ctx, id, fields)
}

func (svc *service) DeleteByID(ctx context.Context, id ID) (*Account, error) {
	return svc.accounts.DeleteByID(ctx, id)
}

func (svc *service) UpdateCurrent(ctx context.Context, callerID ID, fields Fields) (*Account, error) {
	return svc.accounts.UpdateByID(ctx, callerID, fields)
}
