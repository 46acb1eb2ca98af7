package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewFileStore(path)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing file is not an error")

	err = store.Save(&Tokens{IDToken: "id", AccessToken: "access", RefreshToken: "refresh"})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "id", loaded.IDToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.False(t, loaded.SavedAt.IsZero())

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Повторная очистка отсутствующего файла не является ошибкой.
	require.NoError(t, store.Clear())
}

func TestFileStore_ExpiredEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileStore(path)

	// Состариваем запись за пределы срока хранения.
	stale := Tokens{IDToken: "id", SavedAt: time.Now().Add(-25 * time.Hour)}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "expired entry must be dropped")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "expired entry must be removed from disk")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	tokens := &Tokens{IDToken: "id"}
	require.NoError(t, store.Save(tokens))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// Хранилище отдаёт копию: мутация снаружи не видна внутри.
	loaded.IDToken = "mutated"
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "id", again.IDToken)

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
