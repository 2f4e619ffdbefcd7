// Package storage declares the repositories the bot core depends on and
// bundles them for the PostgreSQL and SQLite backends.
package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/absence-bot/internal/domain/groups"
	"github.com/Spok95/absence-bot/internal/domain/reports"
	"github.com/Spok95/absence-bot/internal/domain/users"
)

// Lookups return (nil, nil) when the row does not exist.

type UserRepository interface {
	Init(ctx context.Context, tgID int64) (*users.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
	SetUTCOffset(ctx context.Context, tgID int64, offset int) error
	IncFeedbackCount(ctx context.Context, tgID int64) error
	ResetFeedbackCounts(ctx context.Context) (int64, error)
}

type GroupRepository interface {
	ListByCreator(ctx context.Context, creatorID int64) ([]groups.Group, error)
	ListByRecipient(ctx context.Context, recipientID int64) ([]groups.Group, error)
	GetByCreator(ctx context.Context, creatorID int64, name string) (*groups.Group, error)
	GetByRecipient(ctx context.Context, recipientID int64, name string) (*groups.Group, error)
	Create(ctx context.Context, creatorID int64, name string) (*groups.Group, error)
	AddMember(ctx context.Context, groupID int64, member string) error
	RemoveMember(ctx context.Context, groupID int64, member string) error
	SetRecipient(ctx context.Context, groupID, recipientID int64) error
	Delete(ctx context.Context, groupID int64) error
}

type ReportRepository interface {
	GetByDate(ctx context.Context, groupID int64, date time.Time) (*reports.Report, error)
	Upsert(ctx context.Context, groupID int64, date time.Time, members []string) (bool, error)
	ListInRange(ctx context.Context, groupID int64, from, to time.Time) ([]reports.Report, error)
}

type Store struct {
	Users   UserRepository
	Groups  GroupRepository
	Reports ReportRepository
}

// NewPostgres wires the pgx repositories over one pool.
func NewPostgres(pool *pgxpool.Pool) Store {
	return Store{
		Users:   users.NewRepo(pool),
		Groups:  groups.NewRepo(pool),
		Reports: reports.NewRepo(pool),
	}
}
