package session

import (
	"testing"
	"time"

	"github.com/mselser95/sportsbook-boot/internal/testutil"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestNew_NilLogger(t *testing.T) {
	_, err := New(nil)
	require.EqualError(t, err, "logger cannot be nil")
}

func TestLoginLogout(t *testing.T) {
	s := newTestStore(t)
	assert.Nil(t, s.User().Get())

	require.NoError(t, s.Login(testutil.CreateTestUser("42")))
	assert.Equal(t, "42", s.User().Get().UserID)

	s.Logout()
	assert.Nil(t, s.User().Get())

	s.Logout()
	assert.Nil(t, s.User().Get())
}

func TestLogin_RequiresUserID(t *testing.T) {
	s := newTestStore(t)

	require.Error(t, s.Login(nil))
	require.Error(t, s.Login(&types.UserProfile{Username: "anon"}))
	assert.Nil(t, s.User().Get())
}

func TestExpire(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	err := s.Expire("token revoked")
	require.ErrorIs(t, err, types.ErrNoUserSession)
	assert.Nil(t, s.Expirations().Get())

	require.NoError(t, s.Login(testutil.CreateTestUser("7")))
	require.NoError(t, s.Expire("token revoked"))

	assert.Equal(t, &types.SessionExpiration{
		UserID:    "7",
		Reason:    "token revoked",
		ExpiredAt: fixed,
	}, s.Expirations().Get())
	assert.NotNil(t, s.User().Get(), "expiry does not log out by itself")
}
