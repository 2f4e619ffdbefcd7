package flow

import (
	"context"
	"fmt"
	"slices"

	"github.com/Spok95/absence-bot/internal/datetime"
	"github.com/Spok95/absence-bot/internal/dialog"
)

func (e *Engine) cmdCreateReport(ctx context.Context, s *session) (Result, error) {
	return e.openWithOwnGroups(ctx, s, dialog.StateCreateReportSelectGroup, textNoGroupsToReport)
}

func (e *Engine) stepReportGroup(ctx context.Context, s *session) (Result, error) {
	g, err := e.ownGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(notFound(textNoOwnGroup)), nil
	}
	if len(g.Members) == 0 {
		return Reject(aborted(Precondition, textNoMembersToReport)), nil
	}
	s.say(textReportFor(g.Name), removeKeyboard())
	s.say(textReportHowTo, reportKeyboard(g.Members))
	return Continue(dialog.StateCreateReportPickMembers, dialog.Payload{
		dialog.KeyGroup:   g.Name,
		dialog.KeyMembers: []string{},
		dialog.KeyRoster:  slices.Clone(g.Members),
	}), nil
}

func (e *Engine) stepReportPick(ctx context.Context, s *session) (Result, error) {
	data := s.in.Text
	if data == reportSendData {
		return e.sendReport(ctx, s)
	}
	member, ok := parseReportMember(data, dialog.GetStrings(s.item.Payload, dialog.KeyRoster))
	if !ok {
		return Reject(invalid(textStaleButton)), nil
	}

	picked := dialog.GetStrings(s.item.Payload, dialog.KeyMembers)
	if slices.Contains(picked, member) {
		return Reject(invalid(textAlreadyPicked(member))), nil
	}
	p := s.payload()
	p[dialog.KeyMembers] = append(picked, member)
	s.toast = textPicked(member)
	return Continue(s.item.State, p), nil
}

// sendReport saves today's report and tells the recipient. A failed
// notification is reported to the author; the saved report stays.
func (e *Engine) sendReport(ctx context.Context, s *session) (Result, error) {
	g, err := e.payloadGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}

	// только текущие участники группы
	var absent []string
	for _, m := range dialog.GetStrings(s.item.Payload, dialog.KeyMembers) {
		if g.HasMember(m) && !slices.Contains(absent, m) {
			absent = append(absent, m)
		}
	}
	if absent == nil {
		absent = []string{}
	}

	today := datetime.LocalDate(e.opts.Now(), s.user.UTCOffset)
	created, err := e.store.Reports.Upsert(ctx, g.ID, today, absent)
	if err != nil {
		return Result{}, fmt.Errorf("save report: %w", err)
	}
	e.log.Info("report saved", "user_id", s.in.UserID, "group", g.Name,
		"date", datetime.Format(today), "absent", len(absent), "created", created)
	s.say(textReportSent, Keyboard{})

	recipient, err := e.store.Users.GetByID(ctx, g.RecipientID)
	if err != nil {
		return Result{}, fmt.Errorf("get recipient: %w", err)
	}
	if recipient == nil {
		s.say(textReportNotDelivered, Keyboard{})
		return Complete(), nil
	}

	var warn *Error
	if !created {
		warn = e.notify(ctx, recipient.TelegramID, textReportChanged(g.Name), textReportNotDelivered)
	}
	if warn == nil {
		sorted := slices.Clone(absent)
		slices.Sort(sorted)
		warn = e.notify(ctx, recipient.TelegramID, textAbsence(g.Name, sorted), textReportNotDelivered)
	}
	if warn != nil {
		s.say(warn.Msg, Keyboard{})
	}
	return Complete(), nil
}
