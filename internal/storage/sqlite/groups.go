package sqlite

import (
	"context"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Spok95/absence-bot/internal/domain/groups"
	"github.com/Spok95/absence-bot/internal/storage"
)

var _ storage.GroupRepository = (*GroupRepo)(nil)

type GroupRepo struct {
	db *sqlx.DB
}

type groupRow struct {
	ID          int64  `db:"id"`
	CreatorID   int64  `db:"creator_id"`
	Name        string `db:"name"`
	RecipientID int64  `db:"recipient_id"`
	Members     string `db:"members"`
	CreatedAt   int64  `db:"created_at"`
}

func (r groupRow) toGroup() (*groups.Group, error) {
	members, err := decodeMembers(r.Members)
	if err != nil {
		return nil, err
	}
	return &groups.Group{
		ID:          r.ID,
		CreatorID:   r.CreatorID,
		Name:        r.Name,
		RecipientID: r.RecipientID,
		Members:     members,
		CreatedAt:   time.Unix(r.CreatedAt, 0).UTC(),
	}, nil
}

const groupColumns = `id, creator_id, name, recipient_id, members, created_at`

func (r *GroupRepo) get(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*groups.Group, error) {
	var row groupRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return row.toGroup()
}

func (r *GroupRepo) list(ctx context.Context, query string, args ...any) ([]groups.Group, error) {
	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]groups.Group, 0, len(rows))
	for _, row := range rows {
		g, err := row.toGroup()
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}

func (r *GroupRepo) ListByCreator(ctx context.Context, creatorID int64) ([]groups.Group, error) {
	return r.list(ctx, `SELECT `+groupColumns+` FROM groups WHERE creator_id = ? ORDER BY name, id`, creatorID)
}

func (r *GroupRepo) ListByRecipient(ctx context.Context, recipientID int64) ([]groups.Group, error) {
	return r.list(ctx, `SELECT `+groupColumns+` FROM groups WHERE recipient_id = ? ORDER BY name, id`, recipientID)
}

func (r *GroupRepo) GetByCreator(ctx context.Context, creatorID int64, name string) (*groups.Group, error) {
	return r.get(ctx, r.db, `SELECT `+groupColumns+` FROM groups WHERE creator_id = ? AND name = ?`, creatorID, name)
}

func (r *GroupRepo) GetByRecipient(ctx context.Context, recipientID int64, name string) (*groups.Group, error) {
	return r.get(ctx, r.db, `
		SELECT `+groupColumns+` FROM groups WHERE recipient_id = ? AND name = ? ORDER BY id LIMIT 1
	`, recipientID, name)
}

func (r *GroupRepo) Create(ctx context.Context, creatorID int64, name string) (*groups.Group, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (creator_id, name, recipient_id, members, created_at)
		VALUES (?, ?, ?, '[]', ?)
	`, creatorID, name, creatorID, time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, groups.ErrDuplicate
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.get(ctx, r.db, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
}

func (r *GroupRepo) AddMember(ctx context.Context, groupID int64, member string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	g, err := r.get(ctx, tx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, groupID)
	if err != nil {
		return err
	}
	if g == nil {
		return groups.ErrNotFound
	}
	if g.HasMember(member) {
		return groups.ErrMemberExists
	}
	if g.Full() {
		return groups.ErrGroupFull
	}

	raw, err := encodeMembers(append(g.Members, member))
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE groups SET members = ? WHERE id = ?`, raw, groupID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *GroupRepo) RemoveMember(ctx context.Context, groupID int64, member string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	g, err := r.get(ctx, tx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, groupID)
	if err != nil {
		return err
	}
	if g == nil || !g.HasMember(member) {
		return groups.ErrNotFound
	}

	raw, err := encodeMembers(without(g.Members, member))
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE groups SET members = ? WHERE id = ?`, raw, groupID); err != nil {
		return err
	}

	var reps []reportRow
	if err = tx.SelectContext(ctx, &reps, `SELECT `+reportColumns+` FROM reports WHERE group_id = ?`, groupID); err != nil {
		return err
	}
	now := time.Now().Unix()
	for _, rp := range reps {
		members, derr := decodeMembers(rp.Members)
		if derr != nil {
			err = derr
			return err
		}
		if !slices.Contains(members, member) {
			continue
		}
		raw, err = encodeMembers(without(members, member))
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `UPDATE reports SET members = ?, updated_at = ? WHERE id = ?`, raw, now, rp.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *GroupRepo) SetRecipient(ctx context.Context, groupID, recipientID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE groups SET recipient_id = ? WHERE id = ?`, recipientID, groupID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return groups.ErrNotFound
	}
	return nil
}

func (r *GroupRepo) Delete(ctx context.Context, groupID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, groupID)
	return err
}

func without(list []string, item string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}
