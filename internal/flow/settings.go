package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/absence-bot/internal/datetime"
	"github.com/Spok95/absence-bot/internal/dialog"
)

func (e *Engine) cmdSetUTCOffset(_ context.Context, s *session) (Result, error) {
	s.say(textAskOffset, Keyboard{})
	return Continue(dialog.StateSetUTCOffset, dialog.Payload{}), nil
}

func (e *Engine) stepUTCOffset(ctx context.Context, s *session) (Result, error) {
	offset, err := datetime.ParseUTCOffset(s.in.Text)
	if errors.Is(err, datetime.ErrOffsetRange) {
		return Reject(invalid(textOffsetRange)), nil
	}
	if err != nil {
		return Reject(invalid(textOffsetFormat)), nil
	}
	if err := e.store.Users.SetUTCOffset(ctx, s.in.UserID, offset); err != nil {
		return Result{}, fmt.Errorf("set utc offset: %w", err)
	}
	s.say(textOffsetSet, Keyboard{})
	return Complete(), nil
}

func (e *Engine) cmdFeedback(_ context.Context, s *session) (Result, error) {
	if e.opts.OwnerID == 0 {
		return Reject(precondition(textFeedbackUnavailable)), nil
	}
	if s.user.FeedbackCount >= e.opts.FeedbackLimit {
		return Reject(precondition(textFeedbackLimit)), nil
	}
	s.say(textAskFeedback, Keyboard{})
	return Continue(dialog.StateFeedbackText, dialog.Payload{}), nil
}

// stepFeedback forwards the text to the owner. Only delivered messages count
// towards the daily limit.
func (e *Engine) stepFeedback(ctx context.Context, s *session) (Result, error) {
	body := strings.TrimSpace(s.in.Text)
	if body == "" {
		return Reject(invalid(textFeedbackEmpty)), nil
	}
	name := s.in.UserName
	if name == "" {
		name = "без имени"
	}
	if warn := e.notify(ctx, e.opts.OwnerID, textFeedbackForOwner(name, s.in.UserID, body), textFeedbackFailed); warn != nil {
		s.say(warn.Msg, Keyboard{})
		return Complete(), nil
	}
	if err := e.store.Users.IncFeedbackCount(ctx, s.in.UserID); err != nil {
		return Result{}, fmt.Errorf("count feedback: %w", err)
	}
	s.say(textFeedbackSent, Keyboard{})
	return Complete(), nil
}
