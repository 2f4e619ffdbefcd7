package flow

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Spok95/absence-bot/internal/dialog"
	"github.com/Spok95/absence-bot/internal/domain/groups"
)

/*** CREATE GROUP ***/

func (e *Engine) cmdCreateGroup(ctx context.Context, s *session) (Result, error) {
	list, err := e.store.Groups.ListByCreator(ctx, s.user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("list groups: %w", err)
	}
	if len(list) >= groups.MaxGroupsPerCreator {
		return Reject(precondition(textMaxGroups)), nil
	}
	s.say(textAskGroupName, Keyboard{})
	return Continue(dialog.StateCreateGroupName, dialog.Payload{}), nil
}

func (e *Engine) stepCreateGroup(ctx context.Context, s *session) (Result, error) {
	name := normalizeName(s.in.Text)
	if name == "" {
		return Reject(invalid(textGroupNameEmpty)), nil
	}
	if tooLong(name) {
		return Reject(invalid(textGroupNameLong)), nil
	}

	own, err := e.store.Groups.GetByCreator(ctx, s.user.ID, name)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if own != nil {
		return Reject(conflict(textGroupExists)), nil
	}
	// получатель не может вести две группы с одинаковым названием
	received, err := e.store.Groups.GetByRecipient(ctx, s.user.ID, name)
	if err != nil {
		return Result{}, fmt.Errorf("get group by recipient: %w", err)
	}
	if received != nil {
		return Reject(conflict(textGroupRecipientClash)), nil
	}

	if _, err := e.store.Groups.Create(ctx, s.user.ID, name); err != nil {
		if errors.Is(err, groups.ErrDuplicate) {
			return Reject(conflict(textGroupExists)), nil
		}
		return Result{}, fmt.Errorf("create group: %w", err)
	}
	e.log.Info("group created", "user_id", s.in.UserID, "group", name)
	s.say(textGroupCreated, Keyboard{})
	return Complete(), nil
}

/*** ADD MEMBERS ***/

func (e *Engine) cmdAddMembers(ctx context.Context, s *session) (Result, error) {
	return e.openWithOwnGroups(ctx, s, dialog.StateAddMembersSelectGroup, textNoGroupsToAdd)
}

func (e *Engine) stepAddMembersGroup(ctx context.Context, s *session) (Result, error) {
	g, err := e.ownGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(notFound(textNoOwnGroup)), nil
	}
	if g.Full() {
		return Reject(aborted(Precondition, textGroupFullAbort)), nil
	}
	s.say(textAskMembers, replyKeyboard(nil, true))
	return Continue(dialog.StateAddMembersMembers, dialog.Payload{dialog.KeyGroup: g.Name}), nil
}

func (e *Engine) stepAddMember(ctx context.Context, s *session) (Result, error) {
	g, err := e.payloadGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}

	name := normalizeName(s.in.Text)
	switch {
	case name == stopLabel:
		s.say(textAddDone, Keyboard{})
		return Complete(), nil
	case name == "":
		return Reject(invalid(textMemberEmpty)), nil
	case tooLong(name):
		return Reject(invalid(textMemberLong)), nil
	}

	err = e.store.Groups.AddMember(ctx, g.ID, name)
	switch {
	case errors.Is(err, groups.ErrMemberExists):
		return Reject(conflict(textMemberExists)), nil
	case errors.Is(err, groups.ErrGroupFull):
		return Reject(aborted(Precondition, textAddFull)), nil
	case errors.Is(err, groups.ErrNotFound):
		return Reject(aborted(NotFound, textStateLost)), nil
	case err != nil:
		return Result{}, fmt.Errorf("add member: %w", err)
	}

	s.say(textMemberAdded, Keyboard{})
	if len(g.Members)+1 >= groups.MaxMembers {
		s.say(textAddFull, Keyboard{})
		return Complete(), nil
	}
	return Continue(s.item.State, s.payload()), nil
}

/*** DELETE GROUP ***/

func (e *Engine) cmdDeleteGroup(ctx context.Context, s *session) (Result, error) {
	return e.openWithOwnGroups(ctx, s, dialog.StateDeleteGroupSelectGroup, textNoGroupsToDelete)
}

func (e *Engine) stepDeleteGroupSelect(ctx context.Context, s *session) (Result, error) {
	g, err := e.ownGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(notFound(textNoOwnGroup)), nil
	}
	s.say(textConfirmDelete, replyKeyboard([]string{labelDelete, labelCancelDelete}, false))
	return Continue(dialog.StateDeleteGroupConfirm, dialog.Payload{dialog.KeyGroup: g.Name}), nil
}

func (e *Engine) stepDeleteGroupConfirm(ctx context.Context, s *session) (Result, error) {
	switch normalizeName(s.in.Text) {
	case labelDelete:
		g, err := e.payloadGroup(ctx, s)
		if err != nil {
			return Result{}, fmt.Errorf("get group: %w", err)
		}
		if g != nil {
			if err := e.store.Groups.Delete(ctx, g.ID); err != nil {
				return Result{}, fmt.Errorf("delete group: %w", err)
			}
			e.log.Info("group deleted", "user_id", s.in.UserID, "group", g.Name)
		}
		s.say(textGroupDeleted, Keyboard{})
		return Complete(), nil
	case labelCancelDelete:
		s.say(textDeleteCancelled, Keyboard{})
		return Complete(), nil
	default:
		return Reject(invalid(textBadAnswer)), nil
	}
}

/*** REMOVE MEMBERS ***/

func (e *Engine) cmdRemoveMembers(ctx context.Context, s *session) (Result, error) {
	return e.openWithOwnGroups(ctx, s, dialog.StateRemoveMembersSelect, textNoGroupsToRemove)
}

func (e *Engine) stepRemoveMembersGroup(ctx context.Context, s *session) (Result, error) {
	g, err := e.ownGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(notFound(textNoOwnGroup)), nil
	}
	if len(g.Members) == 0 {
		return Reject(aborted(Precondition, textNoMembersToRemove)), nil
	}
	s.say(textSelectMembers, replyKeyboard(g.Members, true))
	return Continue(dialog.StateRemoveMembersMembers, dialog.Payload{dialog.KeyGroup: g.Name}), nil
}

func (e *Engine) stepRemoveMember(ctx context.Context, s *session) (Result, error) {
	g, err := e.payloadGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}

	name := normalizeName(s.in.Text)
	if name == stopLabel {
		s.say(textRemoveDone, Keyboard{})
		return Complete(), nil
	}
	if err := e.store.Groups.RemoveMember(ctx, g.ID, name); err != nil {
		if errors.Is(err, groups.ErrNotFound) {
			return Reject(notFound(textMemberMissing)), nil
		}
		return Result{}, fmt.Errorf("remove member: %w", err)
	}

	left := slices.DeleteFunc(slices.Clone(g.Members), func(m string) bool { return m == name })
	if len(left) == 0 {
		s.say(textMemberRemoved, Keyboard{})
		s.say(textRemoveEmptied, Keyboard{})
		return Complete(), nil
	}
	s.say(textMemberRemoved, replyKeyboard(left, true))
	return Continue(s.item.State, s.payload()), nil
}

/*** ASSIGN REPORTS RECIPIENT ***/

func (e *Engine) cmdAssignRecipient(ctx context.Context, s *session) (Result, error) {
	return e.openWithOwnGroups(ctx, s, dialog.StateAssignRecipientSelect, textNoGroupsToAssign)
}

func (e *Engine) stepAssignGroup(ctx context.Context, s *session) (Result, error) {
	g, err := e.ownGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(notFound(textNoOwnGroup)), nil
	}
	s.say(textUseRecipientButton, requestUserKeyboard())
	return Continue(dialog.StateAssignRecipientUser, dialog.Payload{dialog.KeyGroup: g.Name}), nil
}

func (e *Engine) stepAssignUser(ctx context.Context, s *session) (Result, error) {
	g, err := e.payloadGroup(ctx, s)
	if err != nil {
		return Result{}, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return Reject(aborted(NotFound, textStateLost)), nil
	}

	target, err := e.store.Users.GetByTelegramID(ctx, s.in.SharedUserID)
	if err != nil {
		return Result{}, fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return Reject(notFound(textRecipientUnknown)), nil
	}

	if target.ID != g.RecipientID {
		other, err := e.store.Groups.GetByRecipient(ctx, target.ID, g.Name)
		if err != nil {
			return Result{}, fmt.Errorf("get group by recipient: %w", err)
		}
		if other != nil && other.ID != g.ID {
			return Reject(conflict(textRecipientClash)), nil
		}
		if err := e.store.Groups.SetRecipient(ctx, g.ID, target.ID); err != nil {
			if errors.Is(err, groups.ErrNotFound) {
				return Reject(aborted(NotFound, textStateLost)), nil
			}
			return Result{}, fmt.Errorf("set recipient: %w", err)
		}
		e.log.Info("reports recipient assigned", "user_id", s.in.UserID, "group", g.Name, "recipient", s.in.SharedUserID)
	}
	s.say(textRecipientAssigned, Keyboard{})
	return Complete(), nil
}
