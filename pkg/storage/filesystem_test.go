package storage

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{ after int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.after <= 0 {
		return 0, errors.New("connection reset")
	}
	n := copy(p, strings.Repeat("x", r.after))
	r.after -= n
	return n, nil
}

func TestSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("frozen.jpg", []byte("jpeg")))

	ok, err := store.Exists("frozen.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	f, err := store.Open("frozen.jpg")
	require.NoError(t, err)
	defer f.Close()
	body, _ := io.ReadAll(f)
	assert.Equal(t, "jpeg", string(body))
}

func TestSaveStreamRemovesPartialOnError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.SaveStream("moana.jpg", &failingReader{after: 10})
	require.Error(t, err)

	ok, err := store.Exists("moana.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../x.jpg", "/etc/passwd", ".."} {
		_, err := store.Exists(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestListAndDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save("b.jpg", []byte("b")))
	require.NoError(t, store.Save("a.jpg", []byte("a")))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names)

	require.NoError(t, store.Delete("a.jpg"))
	require.NoError(t, store.Delete("a.jpg"))
	names, _ = store.List()
	assert.Equal(t, []string{"b.jpg"}, names)
}
