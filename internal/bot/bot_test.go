package bot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/absence-bot/internal/export"
	"github.com/Spok95/absence-bot/internal/flow"
)

func TestReplyMarkupLayout(t *testing.T) {
	kb := flow.Keyboard{
		Kind:    flow.KeyboardReply,
		Buttons: []flow.Button{{Text: "A"}, {Text: "B"}, {Text: "C"}},
		Footer:  &flow.Button{Text: "Стоп"},
	}
	m, ok := markup(kb).(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, m.Keyboard, 3)
	assert.Len(t, m.Keyboard[0], 2)
	assert.Equal(t, "C", m.Keyboard[1][0].Text)
	assert.Equal(t, "Стоп", m.Keyboard[2][0].Text)
	assert.True(t, m.ResizeKeyboard)
}

func TestInlineMarkupCarriesData(t *testing.T) {
	kb := flow.Keyboard{
		Kind:    flow.KeyboardInline,
		Buttons: []flow.Button{{Text: "Ann", Data: "rep:m:Ann"}},
		Footer:  &flow.Button{Text: "Отправить", Data: "rep:send"},
	}
	m, ok := markup(kb).(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, m.InlineKeyboard, 2)
	require.NotNil(t, m.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "rep:m:Ann", *m.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "rep:send", *m.InlineKeyboard[1][0].CallbackData)
}

func TestRequestUserMarkupJSON(t *testing.T) {
	m := markup(flow.Keyboard{Kind: flow.KeyboardRequestUser, Buttons: []flow.Button{{Text: "Выбрать"}}})
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"keyboard": [[{"text": "Выбрать", "request_users": {"request_id": 1, "user_is_bot": false, "max_quantity": 1}}]],
		"resize_keyboard": true,
		"one_time_keyboard": true
	}`, string(raw))

	assert.Nil(t, markup(flow.Keyboard{}))
	_, ok := markup(flow.Keyboard{Kind: flow.KeyboardRemove}).(tgbotapi.ReplyKeyboardRemove)
	assert.True(t, ok)
}

func TestDecodeUpdate(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ok   bool
		want flow.Input
	}{
		{
			name: "text",
			raw:  `{"update_id": 10, "message": {"message_id": 1, "date": 0, "from": {"id": 7, "first_name": "Ivan", "last_name": "Petrov"}, "chat": {"id": 7, "type": "private"}, "text": "/start"}}`,
			ok:   true,
			want: flow.Input{UserID: 7, ChatID: 7, UserName: "Ivan Petrov", Kind: flow.InputText, Text: "/start"},
		},
		{
			name: "photo",
			raw:  `{"update_id": 11, "message": {"message_id": 2, "date": 0, "from": {"id": 7, "first_name": "Ivan"}, "chat": {"id": 7, "type": "private"}, "photo": [{"file_id": "x", "file_unique_id": "y", "width": 1, "height": 1}]}}`,
			ok:   true,
			want: flow.Input{UserID: 7, ChatID: 7, UserName: "Ivan", Kind: flow.InputOther},
		},
		{
			name: "users shared",
			raw:  `{"update_id": 12, "message": {"message_id": 3, "date": 0, "from": {"id": 7, "first_name": "Ivan"}, "chat": {"id": 7, "type": "private"}, "users_shared": {"request_id": 1, "users": [{"user_id": 99}]}}}`,
			ok:   true,
			want: flow.Input{UserID: 7, ChatID: 7, UserName: "Ivan", Kind: flow.InputSharedUser, SharedUserID: 99},
		},
		{
			name: "users shared ids",
			raw:  `{"update_id": 13, "message": {"message_id": 4, "date": 0, "from": {"id": 7, "first_name": "Ivan"}, "chat": {"id": 7, "type": "private"}, "users_shared": {"request_id": 1, "user_ids": [98]}}}`,
			ok:   true,
			want: flow.Input{UserID: 7, ChatID: 7, UserName: "Ivan", Kind: flow.InputSharedUser, SharedUserID: 98},
		},
		{
			name: "callback",
			raw:  `{"update_id": 14, "callback_query": {"id": "cb1", "from": {"id": 7, "first_name": "Ivan"}, "message": {"message_id": 5, "date": 0, "chat": {"id": 7, "type": "private"}}, "data": "rep:send"}}`,
			ok:   true,
			want: flow.Input{UserID: 7, ChatID: 7, UserName: "Ivan", Kind: flow.InputCallback, Text: "rep:send", CallbackID: "cb1"},
		},
		{
			name: "group chat",
			raw:  `{"update_id": 15, "message": {"message_id": 6, "date": 0, "from": {"id": 7, "first_name": "Ivan"}, "chat": {"id": -100, "type": "group"}, "text": "/start"}}`,
		},
		{
			name: "edited",
			raw:  `{"update_id": 16, "edited_message": {"message_id": 7, "date": 0, "chat": {"id": 7, "type": "private"}, "text": "x"}}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			upd, err := decodeUpdate(json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.ok, upd.OK)
			if tc.ok {
				assert.Equal(t, tc.want, upd.Input)
			}
		})
	}

	_, err := decodeUpdate(json.RawMessage(`{"update_id": "x"}`))
	assert.Error(t, err)
}

func TestRouteSkipsMalformedUpdates(t *testing.T) {
	b := New(nil, nil, discard(), nil, Options{Workers: 1})
	queues := []chan flow.Input{make(chan flow.Input, 4)}
	raws := []json.RawMessage{
		json.RawMessage(`{"update_id": 41, "message": "oops"}`),
		json.RawMessage(`{"update_id": 42, "message": {"message_id": 1, "date": 0, "from": {"id": 7, "first_name": "Ivan"}, "chat": {"id": 7, "type": "private"}, "text": "/help"}}`),
	}

	offset, ok := b.route(context.Background(), raws, queues, 41)
	require.True(t, ok)
	assert.Equal(t, 43, offset)
	require.Len(t, queues[0], 1)
	assert.Equal(t, "/help", (<-queues[0]).Text)

	// последнее обновление битое: offset всё равно сдвигается
	offset, ok = b.route(context.Background(), []json.RawMessage{json.RawMessage(`{"update_id": 50, "callback_query": 1}`)}, queues, 43)
	require.True(t, ok)
	assert.Equal(t, 51, offset)
	assert.Empty(t, queues[0])
}

func TestShardIsStable(t *testing.T) {
	for _, id := range []int64{1, 7, 123456789, -5} {
		s := shard(id, 4)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 4)
		assert.Equal(t, s, shard(id, 4))
	}
}

// fakeTelegram is a Bot API stub recording every call.
type fakeTelegram struct {
	mu      sync.Mutex
	calls   map[string][]map[string]string
	updates []string
}

func (f *fakeTelegram) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		form := map[string]string{}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			for k, v := range r.MultipartForm.Value {
				form[k] = v[0]
			}
			for k, fh := range r.MultipartForm.File {
				form[k] = fh[0].Filename
			}
		} else {
			if err := r.ParseForm(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			for k := range r.PostForm {
				form[k] = r.PostForm.Get(k)
			}
		}
		f.mu.Lock()
		f.calls[method] = append(f.calls[method], form)
		var pending []string
		if method == "getUpdates" {
			pending, f.updates = f.updates, nil
		}
		f.mu.Unlock()

		var result string
		switch method {
		case "getMe":
			result = `{"id": 1, "is_bot": true, "first_name": "bot", "username": "absence_bot"}`
		case "sendMessage", "sendDocument":
			result = `{"message_id": 1, "date": 0, "chat": {"id": 7, "type": "private"}}`
		case "getChat":
			result = `{"id": 7, "type": "private", "first_name": "Ivan", "last_name": "Petrov"}`
		case "getUpdates":
			if len(pending) == 0 {
				time.Sleep(10 * time.Millisecond)
			}
			result = "[" + strings.Join(pending, ",") + "]"
		default:
			result = "true"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok": true, "result": `+result+`}`)
	}
}

func (f *fakeTelegram) last(method string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.calls[method]
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

func newFakeAPI(t *testing.T, updates ...string) (*tgbotapi.BotAPI, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{calls: map[string][]map[string]string{}, updates: updates}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	api, err := tgbotapi.NewBotAPIWithClient("TOKEN", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return api, fake
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGatewaySend(t *testing.T) {
	api, fake := newFakeAPI(t)
	gw := NewGateway(api, discard())
	ctx := context.Background()

	require.NoError(t, gw.Send(ctx, 7, flow.Reply{Text: "Команда отменена.", Keyboard: flow.Keyboard{Kind: flow.KeyboardRemove}}))
	call := fake.last("sendMessage")
	require.NotNil(t, call)
	assert.Equal(t, "7", call["chat_id"])
	assert.Equal(t, "Команда отменена.", call["text"])
	assert.Contains(t, call["reply_markup"], `"remove_keyboard":true`)

	path := filepath.Join(t.TempDir(), "a.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("xlsx"), 0o600))
	require.NoError(t, gw.Send(ctx, 7, flow.Reply{Text: "Файл", Document: &export.File{Path: path, Name: "Отчёты.xlsx"}}))
	doc := fake.last("sendDocument")
	require.NotNil(t, doc)
	assert.Equal(t, "Файл", doc["caption"])
	assert.NotEmpty(t, doc["document"])

	require.NoError(t, gw.Answer(ctx, "cb1", "Участник добавлен"))
	assert.Equal(t, "cb1", fake.last("answerCallbackQuery")["callback_query_id"])

	name, err := gw.DisplayName(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", name)
}

type recordingHandler struct {
	mu     sync.Mutex
	inputs []flow.Input
	err    error
	done   func()
}

func (h *recordingHandler) Handle(_ context.Context, in flow.Input) error {
	h.mu.Lock()
	h.inputs = append(h.inputs, in)
	h.mu.Unlock()
	h.done()
	return h.err
}

func TestRunDeliversUpdatesAndReportsErrors(t *testing.T) {
	api, fake := newFakeAPI(t,
		`{"update_id": 41, "message": {"message_id": 1, "date": 0, "from": {"id": 7, "first_name": "Ivan"}, "chat": {"id": 7, "type": "private"}, "text": "/start"}}`,
	)
	gw := NewGateway(api, discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := &recordingHandler{err: errors.New("db is down"), done: cancel}
	b := New(api, gw, discard(), h, Options{Workers: 2})

	require.NoError(t, b.Run(ctx))

	h.mu.Lock()
	require.Len(t, h.inputs, 1)
	assert.Equal(t, "/start", h.inputs[0].Text)
	h.mu.Unlock()

	assert.NotNil(t, fake.last("setMyCommands"))
	assert.Equal(t, flow.TextInternalError, fake.last("sendMessage")["text"])
}
