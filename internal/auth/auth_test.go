package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/catalog"
	"storefront/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s := New(store.NewMemory()).WithCost(bcrypt.MinCost)
	require.NoError(t, s.SetCredentials(context.Background(), "owner", "s3cret-pass"))
	return s
}

func status(t *testing.T, err error) int {
	t.Helper()
	e, ok := catalog.AsError(err)
	require.True(t, ok, "expected client error, got %v", err)
	return e.Status
}

func TestLoginIssuesToken(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	token, err := s.Login(ctx, "owner", "s3cret-pass")
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.NoError(t, s.Authenticate(ctx, token))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.Login(ctx, "owner", "wrong-pass")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))

	_, err = s.Login(ctx, "intruder", "s3cret-pass")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
}

func TestLoginWithoutCredential(t *testing.T) {
	s := New(store.NewMemory())
	_, err := s.Login(context.Background(), "owner", "s3cret-pass")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
}

func TestAuthenticateStatuses(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	assert.Equal(t, http.StatusUnauthorized, status(t, s.Authenticate(ctx, "")))
	// no login yet, so no token is stored
	assert.Equal(t, http.StatusForbidden, status(t, s.Authenticate(ctx, "abc")))

	_, err := s.Login(ctx, "owner", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status(t, s.Authenticate(ctx, "abc")))
}

func TestLoginRotatesToken(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	first, err := s.Login(ctx, "owner", "s3cret-pass")
	require.NoError(t, err)
	second, err := s.Login(ctx, "owner", "s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, http.StatusForbidden, status(t, s.Authenticate(ctx, first)))
	assert.NoError(t, s.Authenticate(ctx, second))
}

func TestChangePasswordInvalidatesOldToken(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	old, err := s.Login(ctx, "owner", "s3cret-pass")
	require.NoError(t, err)

	token, err := s.ChangePassword(ctx, Change{Change: "brand-new-pass", Confirm: "brand-new-pass", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, status(t, s.Authenticate(ctx, old)))
	assert.NoError(t, s.Authenticate(ctx, token))

	_, err = s.Login(ctx, "owner", "s3cret-pass")
	assert.Error(t, err)
	_, err = s.Login(ctx, "owner", "brand-new-pass")
	assert.NoError(t, err)
}

func TestChangeUsername(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.ChangeUsername(ctx, Change{Change: "manager", Confirm: "manager", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = s.Login(ctx, "manager", "s3cret-pass")
	assert.NoError(t, err)
	_, err = s.Login(ctx, "owner", "s3cret-pass")
	assert.Error(t, err)
}

func TestChangeRejections(t *testing.T) {
	tests := []struct {
		name   string
		change Change
		status int
		msg    string
	}{
		{"wrong current password", Change{"new-password", "new-password", "nope"}, http.StatusUnauthorized, "current password is incorrect"},
		{"confirm mismatch", Change{"new-password", "new-passw0rd", "s3cret-pass"}, http.StatusBadRequest, "password confirmation does not match"},
		{"same as current", Change{"s3cret-pass", "s3cret-pass", "s3cret-pass"}, http.StatusBadRequest, "new password must differ from the current one"},
		{"too short", Change{"short", "short", "s3cret-pass"}, http.StatusBadRequest, "password must have between 8 and 64 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newService(t)
			token, err := s.Login(ctx, "owner", "s3cret-pass")
			require.NoError(t, err)

			_, err = s.ChangePassword(ctx, tt.change)
			e, ok := catalog.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.msg, e.Message)

			// a rejected change keeps the session alive
			assert.NoError(t, s.Authenticate(ctx, token))
		})
	}
}

func TestSetCredentialsValidates(t *testing.T) {
	s := New(store.NewMemory()).WithCost(bcrypt.MinCost)
	assert.Error(t, s.SetCredentials(context.Background(), "ab", "s3cret-pass"))
	assert.Error(t, s.SetCredentials(context.Background(), "owner", "short"))
}
