package localidp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/provision"
	"github.com/immoflow/accessgate/provision/repofakes"
	"github.com/immoflow/accessgate/session"
	"github.com/immoflow/accessgate/session/localidp"
)

const (
	testEmail    = "bob@other.example"
	testPassword = "Sup3rSecret"
)

func seedAccount(t *testing.T) *repofakes.FakeAccountRepo {
	t.Helper()
	accounts := repofakes.NewFakeAccountRepo()
	hash, err := provision.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, accounts.Insert(context.Background(), &provision.Account{
		ID:           "user-1",
		Email:        testEmail,
		PasswordHash: hash,
	}))
	return accounts
}

func TestSignInRoundTrip(t *testing.T) {
	p, err := localidp.New(seedAccount(t))
	require.NoError(t, err)

	sess, err := p.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, "user-1", sess.UserID)
	require.Equal(t, testEmail, sess.Email)
	require.True(t, sess.ExpiresAt.After(sess.IssuedAt))

	current, err := p.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, sess.UserID, current.UserID)

	ev := <-p.Events()
	require.Equal(t, session.EventSignedIn, ev.Type)
	require.NotNil(t, ev.Session)
}

func TestSignInWrongPassword(t *testing.T) {
	p, err := localidp.New(seedAccount(t))
	require.NoError(t, err)

	_, err = p.SignIn(context.Background(), testEmail, "WrongSecret1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSignInUnknownAccount(t *testing.T) {
	p, err := localidp.New(repofakes.NewFakeAccountRepo())
	require.NoError(t, err)

	_, err = p.SignIn(context.Background(), testEmail, testPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSignOutClearsSessionAndEmits(t *testing.T) {
	p, err := localidp.New(seedAccount(t))
	require.NoError(t, err)

	_, err = p.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NoError(t, p.SignOut(context.Background()))

	current, err := p.Current(context.Background())
	require.NoError(t, err)
	require.Nil(t, current)

	require.Equal(t, session.EventSignedIn, (<-p.Events()).Type)
	ev := <-p.Events()
	require.Equal(t, session.EventSignedOut, ev.Type)
	require.Nil(t, ev.Session)
}

func TestRefreshExtendsSession(t *testing.T) {
	now := time.Now()
	p, err := localidp.New(seedAccount(t),
		localidp.WithSessionTTL(30*time.Minute),
		localidp.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)

	first, err := p.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	renewed, err := p.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.UserID, renewed.UserID)
	require.True(t, renewed.ExpiresAt.After(first.ExpiresAt))

	current, err := p.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, renewed.ExpiresAt, current.ExpiresAt)

	require.Equal(t, session.EventSignedIn, (<-p.Events()).Type)
	ev := <-p.Events()
	require.Equal(t, session.EventTokenRefreshed, ev.Type)
	require.NotNil(t, ev.Session)
}

func TestRefreshWithoutSession(t *testing.T) {
	p, err := localidp.New(seedAccount(t))
	require.NoError(t, err)

	_, err = p.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestSignalPasswordRecoveryEmitsEvent(t *testing.T) {
	p, err := localidp.New(seedAccount(t))
	require.NoError(t, err)

	p.SignalPasswordRecovery(testEmail)

	ev := <-p.Events()
	require.Equal(t, session.EventPasswordRecovery, ev.Type)
	require.Equal(t, testEmail, ev.Session.Email)
}

func TestCurrentExpiresWithTTL(t *testing.T) {
	now := time.Now()
	p, err := localidp.New(seedAccount(t),
		localidp.WithSessionTTL(time.Minute),
		localidp.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)

	_, err = p.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	current, err := p.Current(context.Background())
	require.NoError(t, err)
	require.Nil(t, current)
}
