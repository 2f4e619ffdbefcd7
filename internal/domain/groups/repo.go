package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const groupColumns = `id, creator_id, name, recipient_id, members, created_at`

func scanGroup(row pgx.Row) (*Group, error) {
	var g Group
	if err := row.Scan(&g.ID, &g.CreatorID, &g.Name, &g.RecipientID, &g.Members, &g.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if g.Members == nil {
		g.Members = []string{}
	}
	return &g, nil
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]Group, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *Repo) ListByCreator(ctx context.Context, creatorID int64) ([]Group, error) {
	return r.list(ctx, `SELECT `+groupColumns+` FROM groups WHERE creator_id = $1 ORDER BY name, id`, creatorID)
}

func (r *Repo) ListByRecipient(ctx context.Context, recipientID int64) ([]Group, error) {
	return r.list(ctx, `SELECT `+groupColumns+` FROM groups WHERE recipient_id = $1 ORDER BY name, id`, recipientID)
}

func (r *Repo) GetByCreator(ctx context.Context, creatorID int64, name string) (*Group, error) {
	return scanGroup(r.pool.QueryRow(ctx, `
		SELECT `+groupColumns+` FROM groups WHERE creator_id = $1 AND name = $2
	`, creatorID, name))
}

func (r *Repo) GetByRecipient(ctx context.Context, recipientID int64, name string) (*Group, error) {
	return scanGroup(r.pool.QueryRow(ctx, `
		SELECT `+groupColumns+` FROM groups WHERE recipient_id = $1 AND name = $2
		ORDER BY id LIMIT 1
	`, recipientID, name))
}

// Create заводит группу, получателем отчётов становится создатель.
func (r *Repo) Create(ctx context.Context, creatorID int64, name string) (*Group, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx, `
		INSERT INTO groups (creator_id, name, recipient_id) VALUES ($1, $2, $1)
		RETURNING `+groupColumns, creatorID, name))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return g, nil
}

// AddMember appends a member in one statement; the WHERE clause carries both
// the duplicate check and the size limit.
func (r *Repo) AddMember(ctx context.Context, groupID int64, member string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE groups SET members = array_append(members, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(members)) AND cardinality(members) < $3
	`, groupID, member, MaxMembers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// разбираемся, почему не обновилось
	var exists, full bool
	err = r.pool.QueryRow(ctx, `
		SELECT $2 = ANY(members), cardinality(members) >= $3 FROM groups WHERE id = $1
	`, groupID, member, MaxMembers).Scan(&exists, &full)
	switch {
	case err == pgx.ErrNoRows:
		return ErrNotFound
	case err != nil:
		return err
	case exists:
		return ErrMemberExists
	case full:
		return ErrGroupFull
	}
	return fmt.Errorf("add member to group %d: no rows updated", groupID)
}

// RemoveMember drops the member from the group and from every report of the
// group in one transaction. Reports left empty are kept.
func (r *Repo) RemoveMember(ctx context.Context, groupID int64, member string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE groups SET members = array_remove(members, $2), updated_at = now()
		WHERE id = $1 AND $2 = ANY(members)
	`, groupID, member)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		UPDATE reports SET members = array_remove(members, $2), updated_at = now()
		WHERE group_id = $1 AND $2 = ANY(members)
	`, groupID, member); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) SetRecipient(ctx context.Context, groupID, recipientID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE groups SET recipient_id = $2, updated_at = now() WHERE id = $1
	`, groupID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет группу, отчёты уходят каскадом.
func (r *Repo) Delete(ctx context.Context, groupID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
	return err
}
