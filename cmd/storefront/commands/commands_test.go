package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/store"
)

func TestSeedDevCredentialOnlyOnce(t *testing.T) {
	ctx := context.Background()
	rows := store.NewMemory()
	a := auth.New(rows).WithCost(bcrypt.MinCost)

	require.NoError(t, seedDevCredential(ctx, rows, a))
	_, err := a.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, a.SetCredentials(ctx, "owner", "s3cret-pass"))
	require.NoError(t, seedDevCredential(ctx, rows, a))
	_, err = a.Login(ctx, "owner", "s3cret-pass")
	assert.NoError(t, err)
}

func TestOpenStoreInDevMode(t *testing.T) {
	rows, err := openStore(context.Background(), &config.Config{DevMode: true})
	require.NoError(t, err)
	defer rows.Close()
	assert.IsType(t, &store.Memory{}, rows)
}

func TestCommandsAreRegistered(t *testing.T) {
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"admin", "set-credentials"}} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
