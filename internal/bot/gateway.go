package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/absence-bot/internal/flow"
)

var _ flow.Gateway = (*Gateway)(nil)

// Gateway delivers engine replies through the Bot API.
type Gateway struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
}

func NewGateway(api *tgbotapi.BotAPI, log *slog.Logger) *Gateway {
	return &Gateway{api: api, log: log}
}

func (g *Gateway) Send(_ context.Context, chatID int64, r flow.Reply) error {
	if r.Document != nil {
		return g.sendDocument(chatID, r)
	}
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if m := markup(r.Keyboard); m != nil {
		msg.ReplyMarkup = m
	}
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (g *Gateway) sendDocument(chatID int64, r flow.Reply) error {
	f, err := os.Open(r.Document.Path)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: r.Document.Name, Reader: f})
	doc.Caption = r.Text
	if m := markup(r.Keyboard); m != nil {
		doc.ReplyMarkup = m
	}
	if _, err := g.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func (g *Gateway) Answer(_ context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	_, err := g.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// DisplayName returns the user's first and last name as Telegram shows them.
func (g *Gateway) DisplayName(_ context.Context, userID int64) (string, error) {
	chat, err := g.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: userID}})
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	if name == "" {
		name = chat.UserName
	}
	return name, nil
}

// commandList is what Telegram shows in the "/" menu.
var commandList = []tgbotapi.BotCommand{
	{Command: "start", Description: "Начать диалог с ботом"},
	{Command: "help", Description: "Получить справочную информацию"},
	{Command: "cancel", Description: "Отменить выполнение текущей команды"},
	{Command: "setutcoffset", Description: "Указать смещение UTC"},
	{Command: "feedback", Description: "Отправить сообщение разработчику"},
	{Command: "creategroup", Description: "Создать группу"},
	{Command: "addmembers", Description: "Добавить участников в группу"},
	{Command: "deletegroup", Description: "Удалить группу"},
	{Command: "removemembers", Description: "Удалить участников из группы"},
	{Command: "assignreportsrecipient", Description: "Назначить получателя отчётов"},
	{Command: "createreport", Description: "Создать и отправить отчёт"},
	{Command: "getstatistics", Description: "Получить статистику отсутствия"},
	{Command: "getreportsfile", Description: "Получить файл отчётов"},
}

func (g *Gateway) registerCommands() error {
	_, err := g.api.Request(tgbotapi.NewSetMyCommands(commandList...))
	return err
}
