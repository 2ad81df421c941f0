package accounts

import (
	"context"
	"sync"
)

type accountRepository struct {
	mu       sync.Mutex
	accounts map[ID]*Account
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if acc, ok := repo.accounts[id]; ok {
		return acc, nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, acc := range repo.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns the identifier. The email check and the insert happen under
// one lock so concurrent registrations with the same email resolve to
// exactly one winner.
func (repo *accountRepository) Create(ctx context.Context, acc *Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.accounts {
		if existing.Email == acc.Email {
			return ErrExistingEmail
		}
	}

	acc.ID = NewID()
	repo.accounts[acc.ID] = acc
	return nil
}

func (repo *accountRepository) UpdateByID(ctx context.Context, id ID, fields Fields) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	for key, val := range fields {
		s, ok := val.(string)
		if !ok {
			continue
		}
		switch key {
		case "name":
			acc.Name = s
		case "email":
			acc.Email = s
		case "avatar":
			acc.Avatar = s
		case "image":
			acc.ImagePath = s
		case "password":
			acc.Password = s
		}
	}

	return acc, nil
}

func (repo *accountRepository) DeleteByID(ctx context.Context, id ID) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	delete(repo.accounts, id)
	return acc, nil
}
