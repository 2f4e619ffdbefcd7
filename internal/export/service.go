package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/absence-bot/internal/datetime"
	"github.com/Spok95/absence-bot/internal/storage"
)

// ErrUnavailable is returned for a format without a registered renderer.
var ErrUnavailable = errors.New("export: format is not available")

// Renderer writes a table to path.
type Renderer interface {
	Render(t Table, path string) error
}

type Request struct {
	GroupID     int64
	GroupName   string
	CreatorName string
	From, To    time.Time
	Format      Format
}

// File is a generated document; the caller removes Path after delivery.
type File struct {
	Path    string
	Name    string
	Caption string
}

// Result carries either a file or, when the range has no reports, a notice.
type Result struct {
	File   *File
	Notice string
}

type Service struct {
	dir       string
	reports   storage.ReportRepository
	renderers map[Format]Renderer
}

func NewService(dir string, reports storage.ReportRepository, renderers map[Format]Renderer) *Service {
	return &Service{dir: dir, reports: reports, renderers: renderers}
}

func (s *Service) Export(ctx context.Context, req Request) (Result, error) {
	renderer, ok := s.renderers[req.Format]
	if !ok || renderer == nil {
		return Result{}, ErrUnavailable
	}

	reps, err := s.reports.ListInRange(ctx, req.GroupID, req.From, req.To)
	if err != nil {
		return Result{}, fmt.Errorf("list reports: %w", err)
	}
	period := fmt.Sprintf("с %s по %s", datetime.Format(req.From), datetime.Format(req.To))
	if len(reps) == 0 {
		return Result{Notice: fmt.Sprintf("С %s по %s в группе \"%s\" не создавалось отчётов об отсутствии.",
			datetime.Format(req.From), datetime.Format(req.To), req.GroupName)}, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, uuid.NewString()+req.Format.Ext())
	if err := renderer.Render(BuildTable(req.CreatorName, req.GroupName, reps), path); err != nil {
		_ = os.Remove(path)
		return Result{}, fmt.Errorf("render %s: %w", req.Format, err)
	}
	return Result{File: &File{
		Path:    path,
		Name:    "Отчёты" + req.Format.Ext(),
		Caption: fmt.Sprintf("Файл отчётов об отсутствии участников группы \"%s\" %s.", req.GroupName, period),
	}}, nil
}
