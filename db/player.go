package db

import (
	"encoding/json"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/TruongV2905/billionaire-boardgame/core"
)

// playerSelect is generic funcion for querying session_player table.
func playerSelect(q squirrel.Queryer, d queryDecorator) ([]core.Player, error) {
	query := d(squirrel.
		Select("player_id", "name", "money", "lands").
		From("session_player"))

	rows, err := squirrel.QueryWith(q, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := []core.Player{}
	for rows.Next() {
		var p core.Player
		var blob []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Money, &blob); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(blob, &p.Lands); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

// PlayerSelect returns the players stored under key in ledger order.
func PlayerSelect(q squirrel.Queryer, key string) ([]core.Player, error) {
	return playerSelect(q, func(b squirrel.SelectBuilder) squirrel.SelectBuilder {
		return b.
			Where("storage_key = ?", key).
			OrderBy("position")
	})
}

func PlayerInsert(e squirrel.Execer, key string, position int, player *core.Player) error {
	lands := player.Lands
	if lands == nil {
		lands = []string{}
	}
	blob, err := json.Marshal(lands)
	if err != nil {
		return err
	}

	if len(blob) > TextMaxLength {
		return errors.New("db: lands slice is too big")
	}

	query := squirrel.
		Insert("session_player").
		SetMap(map[string]interface{}{
			"storage_key": key,
			"position":    position,
			"player_id":   player.ID,
			"name":        player.Name,
			"money":       player.Money,
			"lands":       string(blob),
		})
	_, err = squirrel.ExecWith(e, query)
	if isDuplicate(err) {
		return ErrAlreadyExists
	}
	return err
}

func PlayerDeleteAll(e squirrel.Execer, key string) error {
	query := squirrel.
		Delete("session_player").
		Where("storage_key = ?", key)
	_, err := squirrel.ExecWith(e, query)
	return err
}
