package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/absence-bot/internal/domain/reports"
)

type reportsMock struct {
	mock.Mock
}

func (m *reportsMock) GetByDate(ctx context.Context, groupID int64, date time.Time) (*reports.Report, error) {
	args := m.Called(ctx, groupID, date)
	rp, _ := args.Get(0).(*reports.Report)
	return rp, args.Error(1)
}

func (m *reportsMock) Upsert(ctx context.Context, groupID int64, date time.Time, members []string) (bool, error) {
	args := m.Called(ctx, groupID, date, members)
	return args.Bool(0), args.Error(1)
}

func (m *reportsMock) ListInRange(ctx context.Context, groupID int64, from, to time.Time) ([]reports.Report, error) {
	args := m.Called(ctx, groupID, from, to)
	list, _ := args.Get(0).([]reports.Report)
	return list, args.Error(1)
}

type rendererMock struct {
	mock.Mock
}

func (m *rendererMock) Render(t Table, path string) error {
	args := m.Called(t, path)
	return args.Error(0)
}

var (
	from = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
)

func sample() []reports.Report {
	return []reports.Report{
		{Date: from, Members: []string{"Ann", "Bob"}},
		{Date: from.AddDate(0, 0, 1), Members: []string{}},
	}
}

func TestBuildTable(t *testing.T) {
	tb := BuildTable("Ivan", "Team", sample())

	require.Equal(t, HeaderRows+2, tb.Len())
	assert.Equal(t, [2]string{"Имя создателя группы", "Название группы"}, tb.Rows[0])
	assert.Equal(t, [2]string{"Ivan", "Team"}, tb.Rows[1])
	assert.Equal(t, [2]string{"Дата создания отчёта", "Участники отчёта"}, tb.Rows[2])
	assert.Equal(t, [2]string{"01.03.2024", "Ann\nBob"}, tb.Rows[3])
	assert.Equal(t, [2]string{"02.03.2024", ""}, tb.Rows[4])
	assert.Equal(t, []float64{25, 25, 25, 50, 25}, tb.Heights)
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("Xlsx")
	require.True(t, ok)
	assert.Equal(t, ".xlsx", f.Ext())
	f, ok = ParseFormat("Pdf")
	require.True(t, ok)
	assert.Equal(t, ".pdf", f.Ext())
	_, ok = ParseFormat("Csv")
	assert.False(t, ok)
}

func TestExportWithoutReportsSkipsRenderer(t *testing.T) {
	reps := new(reportsMock)
	rnd := new(rendererMock)
	reps.On("ListInRange", mock.Anything, int64(5), from, to).Return([]reports.Report{}, nil).Once()

	svc := NewService(t.TempDir(), reps, map[Format]Renderer{XLSX: rnd})
	res, err := svc.Export(context.Background(), Request{GroupID: 5, GroupName: "Team", From: from, To: to, Format: XLSX})

	require.NoError(t, err)
	assert.Nil(t, res.File)
	assert.Equal(t, "С 01.03.2024 по 31.03.2024 в группе \"Team\" не создавалось отчётов об отсутствии.", res.Notice)
	reps.AssertExpectations(t)
	rnd.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestExportUsesUniquePaths(t *testing.T) {
	dir := t.TempDir()
	reps := new(reportsMock)
	rnd := new(rendererMock)
	reps.On("ListInRange", mock.Anything, int64(5), from, to).Return(sample(), nil)
	rnd.On("Render", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(dir, reps, map[Format]Renderer{PDF: rnd})
	req := Request{GroupID: 5, GroupName: "Team", CreatorName: "Ivan", From: from, To: to, Format: PDF}
	a, err := svc.Export(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Export(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, a.File)
	require.NotNil(t, b.File)
	assert.NotEqual(t, a.File.Path, b.File.Path)
	assert.Equal(t, dir, filepath.Dir(a.File.Path))
	assert.Equal(t, "Отчёты.pdf", a.File.Name)
	assert.Equal(t, "Файл отчётов об отсутствии участников группы \"Team\" с 01.03.2024 по 31.03.2024.", a.File.Caption)

	tb := rnd.Calls[0].Arguments.Get(0).(Table)
	assert.Equal(t, HeaderRows+2, tb.Len())
}

func TestExportUnavailableFormat(t *testing.T) {
	svc := NewService(t.TempDir(), new(reportsMock), map[Format]Renderer{XLSX: XLSXRenderer{}})
	_, err := svc.Export(context.Background(), Request{Format: PDF})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExportRendererFailure(t *testing.T) {
	reps := new(reportsMock)
	rnd := new(rendererMock)
	reps.On("ListInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sample(), nil)
	rnd.On("Render", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := NewService(t.TempDir(), reps, map[Format]Renderer{XLSX: rnd})
	_, err := svc.Export(context.Background(), Request{GroupID: 1, From: from, To: to, Format: XLSX})
	assert.ErrorContains(t, err, "disk full")
}

func TestXLSXRenderer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, XLSXRenderer{}.Render(BuildTable("Ivan", "Team", sample()), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Ivan", "Team"}, rows[1])
	assert.Equal(t, "Ann\nBob", rows[3][1])

	h, err := f.GetRowHeight(sheetName, 4)
	require.NoError(t, err)
	assert.Equal(t, 50.0, h)
}

func TestPDFRendererEmbeddedFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, PDFRenderer{}.Render(BuildTable("Иван Петров", "Команда", sample()), path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestPDFRendererFontFromAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "cyrillic.ttf")
	require.NoError(t, os.WriteFile(fontPath, defaultFont, 0o600))
	require.True(t, filepath.IsAbs(fontPath))

	path := filepath.Join(dir, "out.pdf")
	require.NoError(t, PDFRenderer{FontPath: fontPath}.Render(BuildTable("Иван Петров", "Команда", sample()), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPDFRendererMissingFont(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	err := PDFRenderer{FontPath: filepath.Join(dir, "missing.ttf")}.Render(BuildTable("Ivan", "Team", sample()), path)
	assert.ErrorContains(t, err, "read pdf font")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPDFRendererBrokenFont(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "broken.ttf")
	require.NoError(t, os.WriteFile(fontPath, []byte("not a font"), 0o600))

	err := PDFRenderer{FontPath: fontPath}.Render(BuildTable("Ivan", "Team", sample()), filepath.Join(dir, "out.pdf"))
	assert.ErrorContains(t, err, "load pdf font")
}
