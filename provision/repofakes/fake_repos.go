package repofakes

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/provision"
)

var _ provision.AccountRepo = (*FakeAccountRepo)(nil)
var _ provision.ResetTokenRepo = (*FakeResetTokenRepo)(nil)

type FakeAccountRepo struct {
	lock    sync.Mutex
	byEmail map[string]*provision.Account
	byID    map[string]*provision.Account
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		byEmail: make(map[string]*provision.Account),
		byID:    make(map[string]*provision.Account),
	}
}

func (f *FakeAccountRepo) Insert(ctx context.Context, account *provision.Account) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if _, ok := f.byEmail[account.Email]; ok {
		return apperrors.ErrAccountExists
	}
	cp := *account
	f.byEmail[account.Email] = &cp
	f.byID[account.ID] = &cp
	return nil
}

func (f *FakeAccountRepo) GetByEmail(ctx context.Context, email string) (*provision.Account, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	account, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (f *FakeAccountRepo) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	account, ok := f.byID[accountID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

type FakeResetTokenRepo struct {
	lock   sync.Mutex
	tokens map[string]*provision.ResetToken
}

func NewFakeResetTokenRepo() *FakeResetTokenRepo {
	return &FakeResetTokenRepo{tokens: make(map[string]*provision.ResetToken)}
}

func (f *FakeResetTokenRepo) Insert(ctx context.Context, token *provision.ResetToken) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	cp := *token
	f.tokens[token.TokenHash] = &cp
	return nil
}

func (f *FakeResetTokenRepo) Get(ctx context.Context, tokenHash string) (*provision.ResetToken, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	token, ok := f.tokens[tokenHash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (f *FakeResetTokenRepo) Delete(ctx context.Context, tokenHash string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.tokens, tokenHash)
	return nil
}

func (f *FakeResetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	var n int64
	for hash, token := range f.tokens {
		if now.After(token.ExpiresAt) {
			delete(f.tokens, hash)
			n++
		}
	}
	return n, nil
}

// Count reports how many tokens are stored, for cleanup assertions.
func (f *FakeResetTokenRepo) Count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.tokens)
}
