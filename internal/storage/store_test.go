package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	store := New(t.TempDir())

	data := []byte("blob contents")
	require.NoError(t, store.Save("general/abc.txt", data))

	got, err := store.Read("general/abc.txt")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, store.Delete("general/abc.txt"))
	_, err = store.Read("general/abc.txt")
	assert.Error(t, err)
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	store := New(t.TempDir())
	assert.NoError(t, store.Delete("general/never-existed.txt"))
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	store := New(t.TempDir())

	for _, key := range []string{"../outside.txt", "a/../../outside.txt", "/etc/passwd", "."} {
		assert.Error(t, store.Save(key, []byte("x")), "key %q", key)
		_, err := store.Read(key)
		assert.Error(t, err, "key %q", key)
	}
}
