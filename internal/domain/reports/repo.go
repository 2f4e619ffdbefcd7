package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const reportColumns = `id, group_id, report_date, members, created_at, updated_at`

func scanReport(row pgx.Row) (*Report, error) {
	var rp Report
	if err := row.Scan(&rp.ID, &rp.GroupID, &rp.Date, &rp.Members, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if rp.Members == nil {
		rp.Members = []string{}
	}
	return &rp, nil
}

func (r *Repo) GetByDate(ctx context.Context, groupID int64, date time.Time) (*Report, error) {
	return scanReport(r.pool.QueryRow(ctx, `
		SELECT `+reportColumns+` FROM reports WHERE group_id = $1 AND report_date = $2
	`, groupID, date))
}

// Upsert пишет отчёт за дату; created == false, если отчёт за этот день уже был и его перезаписали.
func (r *Repo) Upsert(ctx context.Context, groupID int64, date time.Time, members []string) (bool, error) {
	if members == nil {
		members = []string{}
	}
	var created bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reports (group_id, report_date, members) VALUES ($1, $2, $3)
		ON CONFLICT (group_id, report_date) DO UPDATE SET
		  members = EXCLUDED.members, updated_at = now()
		RETURNING (xmax = 0)
	`, groupID, date, members).Scan(&created)
	return created, err
}

// ListInRange returns the reports with from <= date <= to, oldest first.
func (r *Repo) ListInRange(ctx context.Context, groupID int64, from, to time.Time) ([]Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportColumns+` FROM reports
		WHERE group_id = $1 AND report_date BETWEEN $2 AND $3
		ORDER BY report_date
	`, groupID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Report
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rp)
	}
	return out, rows.Err()
}
