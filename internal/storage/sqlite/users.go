package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Spok95/absence-bot/internal/domain/users"
	"github.com/Spok95/absence-bot/internal/storage"
)

var _ storage.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	db *sqlx.DB
}

type userRow struct {
	ID            int64 `db:"id"`
	TelegramID    int64 `db:"telegram_id"`
	UTCOffset     int   `db:"utc_offset"`
	FeedbackCount int   `db:"feedback_count"`
	CreatedAt     int64 `db:"created_at"`
	UpdatedAt     int64 `db:"updated_at"`
}

func (r userRow) toUser() *users.User {
	return &users.User{
		ID:            r.ID,
		TelegramID:    r.TelegramID,
		UTCOffset:     r.UTCOffset,
		FeedbackCount: r.FeedbackCount,
		CreatedAt:     time.Unix(r.CreatedAt, 0).UTC(),
		UpdatedAt:     time.Unix(r.UpdatedAt, 0).UTC(),
	}
}

const userColumns = `id, telegram_id, utc_offset, feedback_count, created_at, updated_at`

func (r *UserRepo) get(ctx context.Context, query string, arg any) (*users.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return row.toUser(), nil
}

func (r *UserRepo) Init(ctx context.Context, tgID int64) (*users.User, error) {
	now := time.Now().Unix()
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, utc_offset, feedback_count, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT (telegram_id) DO NOTHING
	`, tgID, users.DefaultUTCOffset, now, now); err != nil {
		return nil, err
	}
	return r.GetByTelegramID(ctx, tgID)
}

func (r *UserRepo) GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, tgID)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) SetUTCOffset(ctx context.Context, tgID int64, offset int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET utc_offset = ?, updated_at = ? WHERE telegram_id = ?
	`, offset, time.Now().Unix(), tgID)
	return err
}

func (r *UserRepo) IncFeedbackCount(ctx context.Context, tgID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET feedback_count = feedback_count + 1, updated_at = ? WHERE telegram_id = ?
	`, time.Now().Unix(), tgID)
	return err
}

func (r *UserRepo) ResetFeedbackCounts(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET feedback_count = 0, updated_at = ? WHERE feedback_count > 0
	`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
