package accounts

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

var testKey = []byte("test-signing-key")

func newTestService(repo Repository) *service {
	return &service{
		accounts:   repo,
		signingKey: testKey,
		hashCost:   bcrypt.MinCost,
		tokenTTL:   TokenTTL,
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	svc := newTestService(repo)

	tests := []struct {
		req            RegisterRequest
		wantViolations int
		wantErr        error
		wantToken      bool
	}{
		{req: RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "short"}, wantViolations: 1},
		{req: RegisterRequest{Name: "", Email: "bad", Password: ""}, wantViolations: 3},
		{req: RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"}, wantToken: true},
		{req: RegisterRequest{Name: "Ann2", Email: "ann@x.com", Password: "secret2"}, wantErr: ErrExistingEmail},
	}

	for _, tt := range tests {
		token, violations, err := svc.Register(ctx, tt.req)

		assert.Equal(t, tt.wantErr, err)
		assert.Len(t, violations, tt.wantViolations)
		assert.Equal(t, tt.wantToken, token != "")
	}
}

func TestRegister_PersistsHashNeverPlaintext(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	svc := newTestService(repo)

	_, violations, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	assert.NoError(t, err)
	assert.Empty(t, violations)

	acc, err := repo.FindByEmail(ctx, "ann@x.com")
	assert.NoError(t, err)
	assert.True(t, IsValidID(string(acc.ID)))
	assert.NotEmpty(t, acc.Password)
	assert.NotEqual(t, "secret1", acc.Password)
	assert.True(t, hashMatchesPassword(acc.Password, "secret1"))
	assert.Equal(t, "", acc.ImagePath)
	assert.True(t, strings.Contains(acc.Avatar, "gravatar.com/avatar/"))
}

func TestRegister_SamePasswordDifferentHashes(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	svc := newTestService(repo)

	_, _, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	assert.NoError(t, err)
	_, _, err = svc.Register(ctx, RegisterRequest{Name: "Ben", Email: "ben@x.com", Password: "secret1"})
	assert.NoError(t, err)

	ann, _ := repo.FindByEmail(ctx, "ann@x.com")
	ben, _ := repo.FindByEmail(ctx, "ben@x.com")
	assert.NotEqual(t, ann.Password, ben.Password)
}

func TestRegister_ValidationFailureNeverReachesStore(t *testing.T) {
	spy := &repoSpy{Repository: NewAccountRepository()}
	svc := newTestService(spy)

	_, violations, err := svc.Register(context.Background(), RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "short"})

	assert.NoError(t, err)
	assert.Len(t, violations, 1)
	assert.Zero(t, spy.finds)
	assert.Zero(t, spy.creates)
}

func TestCreate_RacingRegistrationsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &Account{
				Name:      "Ann",
				Email:     "ann@x.com",
				Password:  "hash",
				CreatedAt: time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()

	dups := 0
	for _, err := range errs {
		if err == ErrExistingEmail {
			dups++
		} else {
			assert.NoError(t, err)
		}
	}
	assert.Equal(t, 1, dups)
}

func TestRegister_SigningFailureLeavesAccountPersisted(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	svc := &service{
		accounts:   repo,
		signingKey: nil,
		hashCost:   bcrypt.MinCost,
		tokenTTL:   TokenTTL,
	}

	token, violations, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})

	assert.Equal(t, ErrSigningToken, err)
	assert.Empty(t, violations)
	assert.Equal(t, "", token)

	// No compensating delete: the account outlives the failed signing.
	acc, err := repo.FindByEmail(ctx, "ann@x.com")
	assert.NoError(t, err)
	assert.True(t, IsValidID(string(acc.ID)))
	assert.True(t, hashMatchesPassword(acc.Password, "secret1"))
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	svc := newTestService(repo)

	_, _, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	assert.NoError(t, err)

	tests := []struct {
		email, password string
		wantErr         error
	}{
		{"ann@x.com", "secret1", nil},
		{"ann@x.com", "wrong", ErrInvalidCredentials},
		{"nobody@x.com", "secret1", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		token, err := svc.Login(ctx, tt.email, tt.password)
		assert.Equal(t, tt.wantErr, err)
		assert.Equal(t, tt.wantErr == nil, token != "")
	}
}

func TestUpdateCurrent_TouchesOnlySubmittedFields(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	svc := newTestService(repo)

	_, _, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	assert.NoError(t, err)
	_, _, err = svc.Register(ctx, RegisterRequest{Name: "Ben", Email: "ben@x.com", Password: "secret1"})
	assert.NoError(t, err)

	ann, _ := repo.FindByEmail(ctx, "ann@x.com")
	before := *ann

	updated, err := svc.UpdateCurrent(ctx, ann.ID, Fields{"name": "Zed"})
	assert.NoError(t, err)
	assert.Equal(t, "Zed", updated.Name)
	assert.Equal(t, before.ID, updated.ID)
	assert.Equal(t, before.Email, updated.Email)
	assert.Equal(t, before.Avatar, updated.Avatar)
	assert.Equal(t, before.Password, updated.Password)
	assert.Equal(t, before.ImagePath, updated.ImagePath)

	ben, _ := repo.FindByEmail(ctx, "ben@x.com")
	assert.Equal(t, "Ben", ben.Name)
}

func TestService_DeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	svc := newTestService(repo)

	_, _, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	assert.NoError(t, err)
	ann, _ := repo.FindByEmail(ctx, "ann@x.com")

	removed, err := svc.DeleteByID(ctx, ann.ID)
	assert.NoError(t, err)
	assert.Equal(t, ann.ID, removed.ID)

	_, err = svc.Current(ctx, ann.ID)
	assert.Equal(t, ErrNotFound, err)

	_, err = svc.DeleteByID(ctx, ann.ID)
	assert.Equal(t, ErrNotFound, err)
}

type repoSpy struct {
	Repository
	finds, creates int
}

func (s *repoSpy) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.finds++
	return s.Repository.FindByEmail(ctx, email)
}

func (s *repoSpy) Create(ctx context.Context, acc *Account) error {
	s.creates++
	return s.Repository.Create(ctx, acc)
}
