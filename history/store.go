/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package history keeps a SQLite record of finished and in-progress games.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Seednode/storyteller/dixit"
	"github.com/Seednode/storyteller/history/migrations"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrUnknownGame = errors.New("unknown game")

// Game is one stored game. FinishedAt is zero and Standings empty until the
// game is over.
type Game struct {
	ID         string     `json:"id"`
	Seed       uint64     `json:"seed"`
	Players    []string   `json:"players"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`
	Standings  []Standing `json:"standings,omitempty"`
}

type Standing struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Play struct {
	Seat int `json:"seat"`
	Card int `json:"card"`
}

// Round is one stored storyteller turn. Table lists the cards in the order
// they were shown to voters. Scores are the running totals after the turn.
type Round struct {
	Turn            int    `json:"turn"`
	Round           int    `json:"round"`
	Storyteller     int    `json:"storyteller"`
	StorytellerCard int    `json:"storyteller_card"`
	Clue            string `json:"clue"`
	Table           []Play `json:"table"`
	Votes           []Play `json:"votes"`
	Deltas          []int  `json:"deltas"`
	Scores          []int  `json:"scores"`
	Incidents       int    `json:"incidents"`
}

// Store persists game history in SQLite.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path, creating it if needed, and applies any
// pending migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateGame stores a new game and returns its id.
func (s *Store) CreateGame(ctx context.Context, seed uint64, players []string) (string, error) {
	if len(players) == 0 {
		return "", fmt.Errorf("players are required")
	}

	names, err := json.Marshal(players)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, seed, players, created_at) VALUES (?, ?, ?, ?)`,
		id, int64(seed), string(names), toMillis(time.Now()),
	); err != nil {
		return "", fmt.Errorf("create game: %w", err)
	}

	return id, nil
}

// RecordRound stores one completed turn along with the running scores.
func (s *Store) RecordRound(ctx context.Context, id string, sum dixit.RoundSummary, scores []int) error {
	table := make([]Play, len(sum.Table))
	for i, e := range sum.Table {
		table[i] = Play{Seat: e.Seat, Card: e.Card.Key}
	}
	votes := make([]Play, len(sum.Votes))
	for i, v := range sum.Votes {
		votes[i] = Play{Seat: v.Seat, Card: v.Card.Key}
	}

	encoded := make([]string, 0, 4)
	for _, v := range []any{table, votes, sum.Deltas, scores} {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded = append(encoded, string(b))
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (
		   game_id, turn, round, storyteller, storyteller_card, clue,
		   table_cards, votes, deltas, scores, incidents
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sum.Turn, sum.Round, sum.Storyteller, sum.StorytellerCard.Key, sum.Clue,
		encoded[0], encoded[1], encoded[2], encoded[3], len(sum.Incidents),
	); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return fmt.Errorf("%w: %s", ErrUnknownGame, id)
		}
		return fmt.Errorf("record round %d: %w", sum.Turn, err)
	}

	return nil
}

// FinishGame marks a game as over with its final standings.
func (s *Store) FinishGame(ctx context.Context, id string, standings []dixit.Standing) error {
	rows := make([]Standing, len(standings))
	for i, st := range standings {
		rows[i] = Standing{Seat: st.Seat, Name: st.Name, Score: st.Score}
	}

	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET finished_at = ?, standings = ? WHERE id = ?`,
		toMillis(time.Now()), string(b), id,
	)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (Game, error) {
	var (
		g         Game
		seed      int64
		players   string
		created   int64
		finished  sql.NullInt64
		standings sql.NullString
	)

	if err := row.Scan(&g.ID, &seed, &players, &created, &finished, &standings); err != nil {
		return Game{}, err
	}

	g.Seed = uint64(seed)
	g.CreatedAt = fromMillis(created)
	if finished.Valid {
		g.FinishedAt = fromMillis(finished.Int64)
	}
	if err := json.Unmarshal([]byte(players), &g.Players); err != nil {
		return Game{}, fmt.Errorf("decode players of %s: %w", g.ID, err)
	}
	if standings.Valid {
		if err := json.Unmarshal([]byte(standings.String), &g.Standings); err != nil {
			return Game{}, fmt.Errorf("decode standings of %s: %w", g.ID, err)
		}
	}

	return g, nil
}

const gameColumns = `id, seed, players, created_at, finished_at, standings`

// Game returns one stored game.
func (s *Store) Game(ctx context.Context, id string) (Game, error) {
	g, err := scanGame(s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	if err != nil {
		return Game{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// Games returns every stored game, newest first.
func (s *Store) Games(ctx context.Context) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

// Rounds returns the stored turns of a game in turn order.
func (s *Store) Rounds(ctx context.Context, id string) ([]Round, error) {
	if _, err := s.Game(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT turn, round, storyteller, storyteller_card, clue,
		        table_cards, votes, deltas, scores, incidents
		 FROM rounds WHERE game_id = ? ORDER BY turn`, id)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		var table, votes, deltas, scores string
		if err := rows.Scan(&r.Turn, &r.Round, &r.Storyteller, &r.StorytellerCard, &r.Clue,
			&table, &votes, &deltas, &scores, &r.Incidents); err != nil {
			return nil, err
		}

		for _, f := range []struct {
			raw string
			dst any
		}{
			{table, &r.Table},
			{votes, &r.Votes},
			{deltas, &r.Deltas},
			{scores, &r.Scores},
		} {
			if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
				return nil, fmt.Errorf("decode turn %d: %w", r.Turn, err)
			}
		}

		out = append(out, r)
	}

	return out, rows.Err()
}
