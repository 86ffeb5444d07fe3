package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/TruongV2905/billionaire-boardgame/core"
	"github.com/stretchr/testify/assert"
)

func newSQLite(t *testing.T) *sql.DB {
	dbh, err := Connect(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect("postgres", "")
	assert.Equal(t, ErrUnknownDriver, err)
}

func TestSessionGetNotFound(t *testing.T) {
	dbh := newSQLite(t)
	_, err := SessionGet(dbh, "players")
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionSaveGet(t *testing.T) {
	dbh := newSQLite(t)
	players := []core.Player{
		{ID: 1, Name: "A", Money: 3700, Lands: []string{}},
		{ID: 3, Name: "C", Money: 800, Lands: []string{"Hanoi", "Hue"}},
		{ID: 2, Name: "B", Money: 0},
	}

	before := time.Now().Add(-time.Second)
	assert.NoError(t, SessionSave(dbh, "players", "s1", players))

	snap, err := SessionGet(dbh, "players")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.Equal(t, "s1", snap.SessionID)
	assert.True(t, snap.SavedAt.After(before), snap.SavedAt)
	assert.Equal(t, []core.Player{
		{ID: 1, Name: "A", Money: 3700, Lands: []string{}},
		{ID: 3, Name: "C", Money: 800, Lands: []string{"Hanoi", "Hue"}},
		{ID: 2, Name: "B", Money: 0, Lands: []string{}},
	}, snap.Players)
}

func TestSessionSaveReplaces(t *testing.T) {
	dbh := newSQLite(t)
	assert.NoError(t, SessionSave(dbh, "players", "s1", []core.Player{
		{ID: 1, Name: "A", Money: 1},
		{ID: 2, Name: "B", Money: 2},
		{ID: 3, Name: "C", Money: 3},
	}))
	assert.NoError(t, SessionSave(dbh, "players", "s2", []core.Player{
		{ID: 2, Name: "B", Money: 20},
	}))
	assert.NoError(t, SessionSave(dbh, "other", "s3", []core.Player{
		{ID: 1, Name: "X", Money: 5},
	}))

	snap, err := SessionGet(dbh, "players")
	if assert.NoError(t, err) {
		assert.Equal(t, "s2", snap.SessionID)
		assert.Equal(t, []core.Player{{ID: 2, Name: "B", Money: 20, Lands: []string{}}}, snap.Players)
	}
	snap, err = SessionGet(dbh, "other")
	if assert.NoError(t, err) {
		assert.Equal(t, "s3", snap.SessionID)
		assert.Len(t, snap.Players, 1)
	}
}

func TestSessionSaveEmpty(t *testing.T) {
	dbh := newSQLite(t)
	assert.NoError(t, SessionSave(dbh, "players", "s1", nil))

	snap, err := SessionGet(dbh, "players")
	if assert.NoError(t, err) {
		assert.Empty(t, snap.Players)
	}
}

func TestSessionSaveDuplicateRollsBack(t *testing.T) {
	dbh := newSQLite(t)
	assert.NoError(t, SessionSave(dbh, "players", "s1", []core.Player{{ID: 1, Name: "A", Money: 1}}))

	err := SessionSave(dbh, "players", "s2", []core.Player{
		{ID: 1, Name: "A", Money: 1},
		{ID: 1, Name: "B", Money: 2},
	})
	assert.Equal(t, ErrAlreadyExists, err)

	snap, err := SessionGet(dbh, "players")
	if assert.NoError(t, err) {
		assert.Equal(t, "s1", snap.SessionID)
		assert.Len(t, snap.Players, 1)
	}
}

func TestSessionDelete(t *testing.T) {
	dbh := newSQLite(t)
	assert.NoError(t, SessionDelete(dbh, "players"))
	assert.NoError(t, SessionSave(dbh, "players", "s1", []core.Player{{ID: 1, Name: "A"}}))
	assert.NoError(t, SessionDelete(dbh, "players"))

	_, err := SessionGet(dbh, "players")
	assert.Equal(t, ErrNotFound, err)
	ps, err := PlayerSelect(dbh, "players")
	assert.NoError(t, err)
	assert.Empty(t, ps)
}

func TestSessionGetNewerVersion(t *testing.T) {
	dbh := newSQLite(t)
	assert.NoError(t, SessionSave(dbh, "players", "s1", nil))

	_, err := squirrel.ExecWith(dbh, squirrel.
		Update("session").
		Set("version", SnapshotVersion+1).
		Where("storage_key = ?", "players"))
	assert.NoError(t, err)

	_, err = SessionGet(dbh, "players")
	assert.Equal(t, ErrUnsupportedVersion, err)
}

func TestPlayerInsertTooManyLands(t *testing.T) {
	dbh := newSQLite(t)
	lands := make([]string, TextMaxLength/4)
	for i := range lands {
		lands[i] = "xx"
	}
	err := PlayerInsert(dbh, "players", 0, &core.Player{ID: 1, Name: "A", Lands: lands})
	assert.EqualError(t, err, "db: lands slice is too big")
}
