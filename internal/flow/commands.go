package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Spok95/absence-bot/internal/dialog"
	"github.com/Spok95/absence-bot/internal/domain/groups"
)

func (e *Engine) cmdStart(_ context.Context, s *session) (Result, error) {
	name := s.in.UserName
	if name == "" {
		name = strconv.FormatInt(s.in.UserID, 10)
	}
	s.say(textStart(name), Keyboard{})
	return Complete(), nil
}

func (e *Engine) cmdHelp(_ context.Context, s *session) (Result, error) {
	s.say(textHelp, Keyboard{})
	return Complete(), nil
}

func (e *Engine) cmdCancel(_ context.Context, s *session) (Result, error) {
	if s.item.Idle() {
		return Reject(precondition(textNothingToCancel)), nil
	}
	s.say(textCancelled, removeKeyboard())
	return cancelled(), nil
}

// normalizeName trims text and title-cases it, so "team alpha" and
// "Team Alpha" name the same group or member.
func normalizeName(text string) string {
	// Caser хранит состояние, поэтому новый на каждый вызов
	return cases.Title(language.Russian).String(strings.TrimSpace(text))
}

func tooLong(name string) bool {
	return utf8.RuneCountInString(name) > groups.MaxNameLen
}

// ownGroup resolves the input text to a group the caller created.
func (e *Engine) ownGroup(ctx context.Context, s *session) (*groups.Group, error) {
	return e.store.Groups.GetByCreator(ctx, s.user.ID, normalizeName(s.in.Text))
}

// payloadGroup reloads the caller's group saved by an earlier step.
func (e *Engine) payloadGroup(ctx context.Context, s *session) (*groups.Group, error) {
	name, ok := dialog.GetString(s.item.Payload, dialog.KeyGroup)
	if !ok {
		return nil, nil
	}
	return e.store.Groups.GetByCreator(ctx, s.user.ID, name)
}

// openWithOwnGroups starts a flow at next with the caller's groups on a
// keyboard; empty is the refusal when there are none.
func (e *Engine) openWithOwnGroups(ctx context.Context, s *session, next dialog.State, empty string) (Result, error) {
	list, err := e.store.Groups.ListByCreator(ctx, s.user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list groups: %w", err)
	}
	if len(list) == 0 {
		return Reject(precondition(empty)), nil
	}
	s.say(textSelectGroup, replyKeyboard(groups.Names(list), false))
	return Continue(next, dialog.Payload{}), nil
}

func (e *Engine) displayName(ctx context.Context, tgID int64) string {
	name, err := e.gw.DisplayName(ctx, tgID)
	if err != nil || name == "" {
		if err != nil {
			e.log.Debug("display name lookup failed", "user_id", tgID, "err", err)
		}
		return strconv.FormatInt(tgID, 10)
	}
	return name
}
