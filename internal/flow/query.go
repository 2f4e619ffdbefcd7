package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/absence-bot/internal/datetime"
	"github.com/Spok95/absence-bot/internal/dialog"
	"github.com/Spok95/absence-bot/internal/domain/groups"
	"github.com/Spok95/absence-bot/internal/export"
	"github.com/Spok95/absence-bot/internal/infra/metrics"
	"github.com/Spok95/absence-bot/internal/stats"
)

// Statistics and the reports file share group and date range steps.

func (e *Engine) cmdGetStatistics(ctx context.Context, s *session) (Result, error) {
	return e.openQuery(ctx, s, dialog.StateStatsSelectGroup)
}

func (e *Engine) cmdGetReportsFile(ctx context.Context, s *session) (Result, error) {
	return e.openQuery(ctx, s, dialog.StateFileSelectGroup)
}

func (e *Engine) openQuery(ctx context.Context, s *session, next dialog.State) (Result, error) {
	list, err := e.store.Groups.ListByRecipient(ctx, s.user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list received groups: %w", err)
	}
	if len(list) == 0 {
		return Reject(precondition(textNotRecipientAny)), nil
	}
	s.say(textSelectGroup, replyKeyboard(groups.Names(list), false))
	return Continue(next, dialog.Payload{}), nil
}

func (s *session) wantsFile() bool {
	return s.item.State.Flow() == dialog.StateFileSelectGroup.Flow()
}

func (e *Engine) receivedGroup(ctx context.Context, s *session, name string) (*groups.Group, error) {
	g, err := e.store.Groups.GetByRecipient(ctx, s.user.ID, name)
	if err != nil {
		return nil, fmt.Errorf("get group by recipient: %w", err)
	}
	return g, nil
}

func (e *Engine) stepQueryGroup(ctx context.Context, s *session) (Result, error) {
	g, err := e.receivedGroup(ctx, s, normalizeName(s.in.Text))
	if err != nil {
		return Result{}, err
	}
	if g == nil {
		return Reject(notFound(textNotRecipientOf)), nil
	}
	next := dialog.StateStatsDateFrom
	if s.wantsFile() {
		next = dialog.StateFileDateFrom
	}
	s.say(textAskDateFrom, replyKeyboard(datetime.PeriodLabels(), false))
	return Continue(next, dialog.Payload{dialog.KeyGroup: g.Name}), nil
}

func (e *Engine) stepQueryDateFrom(ctx context.Context, s *session) (Result, error) {
	text := strings.TrimSpace(s.in.Text)
	now := e.opts.Now()
	if p, ok := datetime.ParsePeriod(normalizeName(text)); ok {
		from, to := datetime.Resolve(p, now, s.user.UTCOffset)
		return e.withRange(ctx, s, from, to)
	}

	if !datetime.ValidateDateString(text) {
		return Reject(invalid(textBadDateFrom)), nil
	}
	from, err := datetime.Parse(text)
	if err != nil {
		return Reject(invalid(textBadDateFrom)), nil
	}
	if from.After(datetime.LocalDate(now, s.user.UTCOffset)) {
		return Reject(invalid(textFutureDateFrom)), nil
	}

	next := dialog.StateStatsDateTo
	if s.wantsFile() {
		next = dialog.StateFileDateTo
	}
	p := s.payload()
	p[dialog.KeyDateFrom] = datetime.Format(from)
	s.say(textAskDateTo, removeKeyboard())
	return Continue(next, p), nil
}

func (e *Engine) stepQueryDateTo(ctx context.Context, s *session) (Result, error) {
	text := strings.TrimSpace(s.in.Text)
	if !datetime.ValidateDateString(text) {
		return Reject(invalid(textBadDateTo)), nil
	}
	to, err := datetime.Parse(text)
	if err != nil {
		return Reject(invalid(textBadDateTo)), nil
	}
	if to.After(datetime.LocalDate(e.opts.Now(), s.user.UTCOffset)) {
		return Reject(invalid(textFutureDateTo)), nil
	}
	from, err := payloadDate(s.item.Payload, dialog.KeyDateFrom)
	if err != nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}
	if to.Before(from) {
		return Reject(invalid(textDateToBeforeFrom)), nil
	}
	return e.withRange(ctx, s, from, to)
}

// withRange finishes statistics or moves the file flow on to the format step.
func (e *Engine) withRange(ctx context.Context, s *session, from, to time.Time) (Result, error) {
	if s.wantsFile() {
		p := s.payload()
		p[dialog.KeyDateFrom] = datetime.Format(from)
		p[dialog.KeyDateTo] = datetime.Format(to)
		s.say(textAskFormat, replyKeyboard(export.Labels(), false))
		return Continue(dialog.StateFileFormat, p), nil
	}
	return e.statistics(ctx, s, from, to)
}

func (e *Engine) statistics(ctx context.Context, s *session, from, to time.Time) (Result, error) {
	name, _ := dialog.GetString(s.item.Payload, dialog.KeyGroup)
	g, err := e.receivedGroup(ctx, s, name)
	if err != nil {
		return Result{}, err
	}
	if g == nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}
	reps, err := e.store.Reports.ListInRange(ctx, g.ID, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("list reports: %w", err)
	}
	s.say(stats.Render(g.Name, from, to, stats.Aggregate(reps)), Keyboard{})
	return Complete(), nil
}

func (e *Engine) stepFileFormat(ctx context.Context, s *session) (Result, error) {
	format, ok := export.ParseFormat(normalizeName(s.in.Text))
	if !ok {
		return Reject(invalid(textBadFormat)), nil
	}

	name, _ := dialog.GetString(s.item.Payload, dialog.KeyGroup)
	g, err := e.receivedGroup(ctx, s, name)
	if err != nil {
		return Result{}, err
	}
	if g == nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}
	from, errFrom := payloadDate(s.item.Payload, dialog.KeyDateFrom)
	to, errTo := payloadDate(s.item.Payload, dialog.KeyDateTo)
	if errFrom != nil || errTo != nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}

	creatorName := ""
	creator, err := e.store.Users.GetByID(ctx, g.CreatorID)
	if err != nil {
		return Result{}, fmt.Errorf("get creator: %w", err)
	}
	if creator != nil {
		creatorName = e.displayName(ctx, creator.TelegramID)
	}

	res, err := e.exporter.Export(ctx, export.Request{
		GroupID:     g.ID,
		GroupName:   g.Name,
		CreatorName: creatorName,
		From:        from,
		To:          to,
		Format:      format,
	})
	if errors.Is(err, export.ErrUnavailable) {
		return Reject(invalid(fmt.Sprintf(textFormatUnavailable, format))), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("export: %w", err)
	}
	if res.File == nil {
		s.say(res.Notice, Keyboard{})
		return Complete(), nil
	}
	metrics.Exported(string(format))
	s.replies = append(s.replies, Reply{Text: res.File.Caption, Document: res.File})
	return Complete(), nil
}

func payloadDate(p dialog.Payload, key string) (time.Time, error) {
	v, ok := dialog.GetString(p, key)
	if !ok {
		return time.Time{}, fmt.Errorf("payload has no %s", key)
	}
	return datetime.Parse(v)
}
