package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps at most one state per user.
type Store interface {
	Get(ctx context.Context, userID int64) (*Item, error)
	Set(ctx context.Context, userID int64, state State, payload Payload) error
	Reset(ctx context.Context, userID int64) error
}

var _ Store = (*Repo)(nil)

// Repo хранит состояния в таблице dialog_states
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, userID int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT state, payload, updated_at FROM dialog_states WHERE user_id = $1`, userID)
	var (
		state     string
		raw       []byte
		updatedAt time.Time
	)
	if err := row.Scan(&state, &raw, &updatedAt); err != nil {
		// если строки нет, считаем, что состояния пока нет
		if err == pgx.ErrNoRows {
			return &Item{UserID: userID, State: StateIdle, Payload: Payload{}}, nil
		}
		return nil, err
	}
	p := Payload{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}
	return &Item{UserID: userID, State: State(state), Payload: p, UpdatedAt: updatedAt}, nil
}

func (r *Repo) Set(ctx context.Context, userID int64, state State, payload Payload) error {
	if payload == nil {
		payload = Payload{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (user_id, state, payload, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (user_id) DO UPDATE SET
		  state=$2, payload=$3, updated_at=now()
	`, userID, string(state), raw)
	return err
}

func (r *Repo) Reset(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE user_id = $1`, userID)
	return err
}

// GetString Helper для безопасного чтения строк из payload
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetStrings reads a string list; after a JSON round trip it arrives as []any.
func GetStrings(p Payload, key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

// Clone copies the top level of a payload.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
