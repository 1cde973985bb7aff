package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)

	require.NoError(t, s.Save(ctx, "portfolios/b", []byte(`{"n":2}`)))
	require.NoError(t, s.Save(ctx, "portfolios/a", []byte(`{"n":1}`)))
	require.NoError(t, s.Save(ctx, "sessions/a", []byte(`{}`)))
	require.NoError(t, s.Save(ctx, "portfolios%x", []byte(`{}`)))

	got, err := s.Load(ctx, "portfolios/a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got))

	require.NoError(t, s.Save(ctx, "portfolios/a", []byte(`{"n":3}`)))
	got, err = s.Load(ctx, "portfolios/a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":3}`, string(got))

	keys, err := s.Keys(ctx, "portfolios/")
	require.NoError(t, err)
	assert.Equal(t, []string{"portfolios/a", "portfolios/b"}, keys)

	require.NoError(t, s.Delete(ctx, "portfolios/a"))
	_, err = s.Load(ctx, "portfolios/a")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err = s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Save(ctx, "k", buf))
	buf[0] = 'z'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nisab.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nisab.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "k", []byte(`"v"`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"v"`, string(got))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("NISAB_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("NISAB_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, uri, "nisab_test_"+time.Now().Format("20060102150405"))
	require.NoError(t, err)
	defer func() {
		_ = s.coll.Database().Drop(context.Background())
		_ = s.Close()
	}()

	exerciseStore(t, s)
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type doc struct {
		Name string `json:"name"`
	}
	require.NoError(t, SaveJSON(ctx, s, "d", doc{Name: "x"}))

	var out doc
	require.NoError(t, LoadJSON(ctx, s, "d", &out))
	assert.Equal(t, "x", out.Name)

	require.NoError(t, s.Save(ctx, "bad", []byte("{")))
	assert.ErrorContains(t, LoadJSON(ctx, s, "bad", &out), "decoding bad")
	assert.ErrorIs(t, LoadJSON(ctx, s, "nope", &out), ErrNotFound)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "data", "nisab.db")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, Options{Driver: "redis"})
	assert.ErrorContains(t, err, "unknown storage driver")
}
