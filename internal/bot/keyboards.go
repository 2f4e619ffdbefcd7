package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/absence-bot/internal/flow"
)

const buttonsPerRow = 2

// recipientRequestID tags the users_shared answer of the recipient button.
const recipientRequestID = 1

// В v5.5.1 нет KeyboardButtonRequestUsers, поэтому разметку собираем сами
type requestUsersMarkup struct {
	Keyboard        [][]requestUsersButton `json:"keyboard"`
	ResizeKeyboard  bool                   `json:"resize_keyboard"`
	OneTimeKeyboard bool                   `json:"one_time_keyboard"`
}

type requestUsersButton struct {
	Text         string             `json:"text"`
	RequestUsers *requestUsersParam `json:"request_users,omitempty"`
}

type requestUsersParam struct {
	RequestID   int  `json:"request_id"`
	UserIsBot   bool `json:"user_is_bot"`
	MaxQuantity int  `json:"max_quantity"`
}

// markup converts a flow keyboard into Telegram reply_markup; nil means none.
func markup(kb flow.Keyboard) any {
	switch kb.Kind {
	case flow.KeyboardReply:
		return replyMarkup(kb)
	case flow.KeyboardRemove:
		return tgbotapi.NewRemoveKeyboard(false)
	case flow.KeyboardInline:
		return inlineMarkup(kb)
	case flow.KeyboardRequestUser:
		return requestUserMarkup(kb)
	default:
		return nil
	}
}

func replyMarkup(kb flow.Keyboard) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, b := range kb.Buttons {
		row = append(row, tgbotapi.NewKeyboardButton(b.Text))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if kb.Footer != nil {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(kb.Footer.Text)))
	}
	return tgbotapi.ReplyKeyboardMarkup{ResizeKeyboard: true, Keyboard: rows}
}

func inlineMarkup(kb flow.Keyboard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, b := range kb.Buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if kb.Footer != nil {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(kb.Footer.Text, kb.Footer.Data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func requestUserMarkup(kb flow.Keyboard) requestUsersMarkup {
	text := ""
	if len(kb.Buttons) > 0 {
		text = kb.Buttons[0].Text
	}
	return requestUsersMarkup{
		Keyboard: [][]requestUsersButton{{{
			Text: text,
			RequestUsers: &requestUsersParam{
				RequestID:   recipientRequestID,
				UserIsBot:   false,
				MaxQuantity: 1,
			},
		}}},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}
