package db

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/TruongV2905/billionaire-boardgame/core"
)

// SnapshotVersion is the layout version written by SessionSave.
const SnapshotVersion = 1

// Snapshot is the persisted state of a ledger.
type Snapshot struct {
	Version   int
	SessionID string
	SavedAt   time.Time
	Players   []core.Player
}

type sessionRow struct {
	version   int
	sessionID string
	savedAt   int64
}

func sessionGetRow(q squirrel.Queryer, key string) (*sessionRow, error) {
	query := squirrel.
		Select("version", "session_id", "saved_at").
		From("session").
		Where("storage_key = ?", key)

	rows, err := squirrel.QueryWith(q, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	var r sessionRow
	if err := rows.Scan(&r.version, &r.sessionID, &r.savedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// SessionGet loads the snapshot stored under key.
func SessionGet(q squirrel.Queryer, key string) (*Snapshot, error) {
	r, err := sessionGetRow(q, key)
	if err != nil {
		return nil, err
	}
	if r.version > SnapshotVersion {
		return nil, ErrUnsupportedVersion
	}
	players, err := PlayerSelect(q, key)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Version:   r.version,
		SessionID: r.sessionID,
		SavedAt:   time.Unix(r.savedAt, 0).UTC(),
		Players:   players,
	}, nil
}

// SessionSave replaces whatever is stored under key with the given session
// players, in a single transaction.
func SessionSave(dbh *sql.DB, key, sessionID string, players []core.Player) error {
	return Transaction(dbh, func(tx *sql.Tx) error {
		if err := SessionDelete(tx, key); err != nil {
			return err
		}
		query := squirrel.
			Insert("session").
			SetMap(map[string]interface{}{
				"storage_key": key,
				"version":     SnapshotVersion,
				"session_id":  sessionID,
				"saved_at":    time.Now().Unix(),
			})
		if _, err := squirrel.ExecWith(tx, query); err != nil {
			if isDuplicate(err) {
				return ErrAlreadyExists
			}
			return err
		}
		for i := range players {
			if err := PlayerInsert(tx, key, i, &players[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// SessionDelete forgets the session stored under key. Deleting a missing
// session is not an error.
func SessionDelete(e squirrel.Execer, key string) error {
	if err := PlayerDeleteAll(e, key); err != nil {
		return err
	}
	query := squirrel.
		Delete("session").
		Where("storage_key = ?", key)
	_, err := squirrel.ExecWith(e, query)
	return err
}
