package bot

import (
	"encoding/json"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/absence-bot/internal/flow"
)

// sharedUsersMessage reads the users_shared service message that tgbotapi v5.5.1
// does not model. Older servers send user_ids, newer ones users[].user_id.
type sharedUsersMessage struct {
	Message *struct {
		UsersShared *struct {
			RequestID int     `json:"request_id"`
			UserIDs   []int64 `json:"user_ids"`
			Users     []struct {
				UserID int64 `json:"user_id"`
			} `json:"users"`
		} `json:"users_shared"`
	} `json:"message"`
}

func (p sharedUsersMessage) userID() (int64, bool) {
	if p.Message == nil || p.Message.UsersShared == nil {
		return 0, false
	}
	us := p.Message.UsersShared
	if len(us.Users) > 0 {
		return us.Users[0].UserID, true
	}
	if len(us.UserIDs) > 0 {
		return us.UserIDs[0], true
	}
	return 0, false
}

// update is one decoded getUpdates entry.
type update struct {
	ID    int
	Kind  string // for metrics
	Input flow.Input
	OK    bool // false: nothing for the engine
}

func decodeUpdate(raw json.RawMessage) (update, error) {
	var upd tgbotapi.Update
	if err := json.Unmarshal(raw, &upd); err != nil {
		return update{}, err
	}
	out := update{ID: upd.UpdateID, Kind: "other"}

	switch {
	case upd.Message != nil:
		out.Kind = "message"
		msg := upd.Message
		if msg.From == nil || msg.Chat == nil || msg.Chat.Type != "private" {
			return out, nil
		}
		in := flow.Input{
			UserID:   msg.From.ID,
			ChatID:   msg.Chat.ID,
			UserName: fullName(msg.From),
			Kind:     flow.InputOther,
		}
		var shared sharedUsersMessage
		if err := json.Unmarshal(raw, &shared); err != nil {
			return update{}, err
		}
		if id, ok := shared.userID(); ok {
			in.Kind = flow.InputSharedUser
			in.SharedUserID = id
		} else if msg.Text != "" {
			in.Kind = flow.InputText
			in.Text = msg.Text
		}
		out.Input, out.OK = in, true

	case upd.CallbackQuery != nil:
		out.Kind = "callback_query"
		cq := upd.CallbackQuery
		if cq.From == nil {
			return out, nil
		}
		chatID := cq.From.ID
		if cq.Message != nil && cq.Message.Chat != nil {
			if cq.Message.Chat.Type != "private" {
				return out, nil
			}
			chatID = cq.Message.Chat.ID
		}
		out.Input = flow.Input{
			UserID:     cq.From.ID,
			ChatID:     chatID,
			UserName:   fullName(cq.From),
			Kind:       flow.InputCallback,
			Text:       cq.Data,
			CallbackID: cq.ID,
		}
		out.OK = true
	}
	return out, nil
}

func fullName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.UserName
	}
	return name
}
