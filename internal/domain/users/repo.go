package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const userColumns = `id, telegram_id, utc_offset, feedback_count, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.UTCOffset, &u.FeedbackCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Init создаёт пользователя при первом обращении, повторный вызов ничего не меняет.
func (r *Repo) Init(ctx context.Context, tgID int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, utc_offset) VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET telegram_id = EXCLUDED.telegram_id
		RETURNING `+userColumns, tgID, DefaultUTCOffset)
	return scanUser(row)
}

func (r *Repo) GetByTelegramID(ctx context.Context, tgID int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, tgID))
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *Repo) SetUTCOffset(ctx context.Context, tgID int64, offset int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET utc_offset = $2, updated_at = now() WHERE telegram_id = $1
	`, tgID, offset)
	return err
}

func (r *Repo) IncFeedbackCount(ctx context.Context, tgID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET feedback_count = feedback_count + 1, updated_at = now() WHERE telegram_id = $1
	`, tgID)
	return err
}

// ResetFeedbackCounts обнуляет счётчики одной командой и возвращает число затронутых строк.
func (r *Repo) ResetFeedbackCounts(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET feedback_count = 0, updated_at = now() WHERE feedback_count > 0
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
