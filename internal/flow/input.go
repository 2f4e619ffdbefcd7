// Package flow is the per-user conversation engine: it opens flows from
// commands, validates each step's input and drives the repositories.
package flow

import (
	"context"
	"strconv"
	"strings"

	"github.com/Spok95/absence-bot/internal/export"
)

type InputKind int

const (
	InputText InputKind = iota + 1
	InputCallback
	InputSharedUser
	InputOther
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputCallback:
		return "callback"
	case InputSharedUser:
		return "shared_user"
	default:
		return "other"
	}
}

// Input is one inbound event, already stripped of transport details.
type Input struct {
	UserID       int64
	ChatID       int64
	UserName     string
	Kind         InputKind
	Text         string // message text or callback data
	CallbackID   string
	SharedUserID int64
}

type KeyboardKind int

const (
	KeyboardNone KeyboardKind = iota
	KeyboardReply
	KeyboardRemove
	KeyboardInline
	KeyboardRequestUser
)

type Button struct {
	Text string
	Data string
}

// Keyboard is laid out two buttons per row; Footer, if set, takes a row of its own.
type Keyboard struct {
	Kind    KeyboardKind
	Buttons []Button
	Footer  *Button
}

type Reply struct {
	Text     string
	Keyboard Keyboard
	Document *export.File
}

// Gateway is the messaging transport.
type Gateway interface {
	Send(ctx context.Context, chatID int64, r Reply) error
	Answer(ctx context.Context, callbackID, text string) error
	DisplayName(ctx context.Context, userID int64) (string, error)
}

// Exporter produces report files.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

func replyKeyboard(labels []string, stop bool) Keyboard {
	kb := Keyboard{Kind: KeyboardReply}
	for _, l := range labels {
		kb.Buttons = append(kb.Buttons, Button{Text: l})
	}
	if stop {
		kb.Footer = &Button{Text: stopLabel}
	}
	return kb
}

func removeKeyboard() Keyboard {
	return Keyboard{Kind: KeyboardRemove}
}

func requestUserKeyboard() Keyboard {
	return Keyboard{Kind: KeyboardRequestUser, Buttons: []Button{{Text: labelRequestRecipient}}}
}

// Данные inline-кнопок отчёта. Telegram ограничивает callback_data 64 байтами,
// поэтому кнопка несёт индекс участника, а не имя.
const (
	reportMemberPrefix = "rep:m:"
	reportSendData     = "rep:send"
)

func reportMemberData(i int) string {
	return reportMemberPrefix + strconv.Itoa(i)
}

// parseReportMember resolves button data against the roster the keyboard was built from.
func parseReportMember(data string, roster []string) (string, bool) {
	raw, ok := strings.CutPrefix(data, reportMemberPrefix)
	if !ok {
		return "", false
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= len(roster) {
		return "", false
	}
	return roster[i], true
}

func reportKeyboard(members []string) Keyboard {
	kb := Keyboard{Kind: KeyboardInline}
	for i, m := range members {
		kb.Buttons = append(kb.Buttons, Button{Text: m, Data: reportMemberData(i)})
	}
	kb.Footer = &Button{Text: labelSend, Data: reportSendData}
	return kb
}
