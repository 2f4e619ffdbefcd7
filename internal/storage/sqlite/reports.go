package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Spok95/absence-bot/internal/domain/reports"
	"github.com/Spok95/absence-bot/internal/storage"
)

var _ storage.ReportRepository = (*ReportRepo)(nil)

type ReportRepo struct {
	db *sqlx.DB
}

type reportRow struct {
	ID        int64  `db:"id"`
	GroupID   int64  `db:"group_id"`
	Date      string `db:"report_date"`
	Members   string `db:"members"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r reportRow) toReport() (*reports.Report, error) {
	members, err := decodeMembers(r.Members)
	if err != nil {
		return nil, err
	}
	d, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return nil, err
	}
	return &reports.Report{
		ID:        r.ID,
		GroupID:   r.GroupID,
		Date:      d,
		Members:   members,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(r.UpdatedAt, 0).UTC(),
	}, nil
}

const reportColumns = `id, group_id, report_date, members, created_at, updated_at`

func (r *ReportRepo) GetByDate(ctx context.Context, groupID int64, date time.Time) (*reports.Report, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+reportColumns+` FROM reports WHERE group_id = ? AND report_date = ?
	`, groupID, date.Format(dateLayout))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return row.toReport()
}

func (r *ReportRepo) Upsert(ctx context.Context, groupID int64, date time.Time, members []string) (created bool, err error) {
	raw, err := encodeMembers(members)
	if err != nil {
		return false, err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	day := date.Format(dateLayout)
	now := time.Now().Unix()
	var id int64
	err = tx.GetContext(ctx, &id, `SELECT id FROM reports WHERE group_id = ? AND report_date = ?`, groupID, day)
	switch {
	case isNoRows(err):
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO reports (group_id, report_date, members, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		`, groupID, day, raw, now, now); err != nil {
			return false, err
		}
		created = true
	case err != nil:
		return false, err
	default:
		if _, err = tx.ExecContext(ctx, `UPDATE reports SET members = ?, updated_at = ? WHERE id = ?`, raw, now, id); err != nil {
			return false, err
		}
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return created, nil
}

func (r *ReportRepo) ListInRange(ctx context.Context, groupID int64, from, to time.Time) ([]reports.Report, error) {
	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT `+reportColumns+` FROM reports
		WHERE group_id = ? AND report_date BETWEEN ? AND ?
		ORDER BY report_date
	`, groupID, from.Format(dateLayout), to.Format(dateLayout)); err != nil {
		return nil, err
	}
	return toReports(rows)
}

func toReports(rows []reportRow) ([]reports.Report, error) {
	out := make([]reports.Report, 0, len(rows))
	for _, row := range rows {
		rp, err := row.toReport()
		if err != nil {
			return nil, err
		}
		out = append(out, *rp)
	}
	return out, nil
}
