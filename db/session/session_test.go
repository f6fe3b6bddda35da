package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestSession(t *testing.T) (*Session, *sqlx.DB) {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE users(id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO users(id, name) VALUES(1, 'alice'), (2, 'bob')")
	require.NoError(t, err)
	return NewWithDB(nil, db), db
}

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestSession(t)
	assert.False(t, srv.IsOpen())

	_, err := srv.DB()
	assert.True(t, errors.Is(err, ErrSessionClosed))
	err = srv.Scoped(ctx, true, func(cursor *Cursor) error { return nil })
	assert.True(t, errors.Is(err, ErrSessionClosed))

	require.NoError(t, srv.Open(ctx))
	assert.True(t, srv.IsOpen())
	require.NoError(t, srv.Open(ctx), "open is idempotent")

	require.NoError(t, srv.Close())
	assert.False(t, srv.IsOpen())
	require.NoError(t, srv.Close(), "close is idempotent")
}

func TestSession_OpenVerifyFailure(t *testing.T) {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "broken.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	srv := NewWithDB(nil, db)
	assert.Error(t, srv.Open(context.Background()))
	assert.False(t, srv.IsOpen())
}

func TestSession_Scoped(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestSession(t)
	require.NoError(t, srv.Open(ctx))
	defer srv.Close()

	testCases := []struct {
		description string
		structured  bool
		expect      interface{}
	}{
		{
			description: "structured",
			structured:  true,
			expect: []map[string]interface{}{
				{"id": int64(1), "name": "alice"},
				{"id": int64(2), "name": "bob"},
			},
		},
		{
			description: "positional",
			structured:  false,
			expect:      [][]interface{}{{int64(1), "alice"}, {int64(2), "bob"}},
		},
	}
	for _, testCase := range testCases {
		var used *Cursor
		var actual interface{}
		err := srv.Scoped(ctx, testCase.structured, func(cursor *Cursor) error {
			used = cursor
			var err error
			actual, err = cursor.Fetch(ctx, "SELECT id, name FROM users ORDER BY id")
			return err
		})
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
		assert.EqualValues(t, 1, used.closes, testCase.description)
		assert.True(t, srv.IsOpen(), testCase.description)
	}
}

func TestSession_ScopedClosesOnErrorAndPanic(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestSession(t)
	require.NoError(t, srv.Open(ctx))
	defer srv.Close()

	var used *Cursor
	err := srv.Scoped(ctx, true, func(cursor *Cursor) error {
		used = cursor
		_, err := cursor.FetchMaps(ctx, "SELECT * FROM missing_table")
		return err
	})
	assert.Error(t, err)
	assert.EqualValues(t, 1, used.closes)

	assert.Panics(t, func() {
		_ = srv.Scoped(ctx, true, func(cursor *Cursor) error {
			used = cursor
			panic("boom")
		})
	})
	assert.EqualValues(t, 1, used.closes)

	// the single pooled connection was returned, so the session still works
	rows, err := srv.Fetch(ctx, "SELECT name FROM users WHERE id = 2")
	require.NoError(t, err)
	assert.EqualValues(t, []map[string]interface{}{{"name": "bob"}}, rows)
	assert.True(t, srv.IsOpen())
}

func TestConfig_Init(t *testing.T) {
	cfg := &Config{}
	cfg.init()
	assert.EqualValues(t, 1, cfg.MaxConnections)
	assert.EqualValues(t, DefaultTag, *cfg.Tag)
}
