package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalSecretManager_GetSecret(t *testing.T) {
	dir := t.TempDir()
	manager := NewLocalSecretManager(dir, zap.NewNop())

	t.Run("json secret", func(t *testing.T) {
		path := filepath.Join(dir, "api-key.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"value":"secret-token"}`), 0o600))

		secret, err := manager.GetSecret(context.Background(), "api-key.json")
		require.NoError(t, err)
		assert.Equal(t, "secret-token", secret.Value)
	})

	t.Run("plaintext secret", func(t *testing.T) {
		path := filepath.Join(dir, "api-key.txt")
		require.NoError(t, os.WriteFile(path, []byte("raw-token"), 0o600))

		secret, err := manager.GetSecret(context.Background(), "api-key.txt")
		require.NoError(t, err)
		assert.Equal(t, "raw-token", secret.Value)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := manager.GetSecret(context.Background(), "nope")
		require.Error(t, err)
	})
}
