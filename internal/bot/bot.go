// Package bot connects the conversation engine to Telegram: it long-polls
// updates, shards them over workers by user and delivers replies.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/absence-bot/internal/flow"
	"github.com/Spok95/absence-bot/internal/infra/metrics"
)

const (
	queueSize    = 64
	retryDelay   = 3 * time.Second
	handleBudget = 2 * time.Minute
)

// Handler processes one user event.
type Handler interface {
	Handle(ctx context.Context, in flow.Input) error
}

type Options struct {
	Workers     int
	PollTimeout time.Duration
}

type Bot struct {
	api     *tgbotapi.BotAPI
	gw      *Gateway
	log     *slog.Logger
	handler Handler
	opts    Options
}

func New(api *tgbotapi.BotAPI, gw *Gateway, log *slog.Logger, handler Handler, opts Options) *Bot {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Bot{api: api, gw: gw, log: log, handler: handler, opts: opts}
}

// Run polls until ctx is cancelled, then lets the workers finish what they
// have already received.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.gw.registerCommands(); err != nil {
		b.log.Warn("set bot commands failed", "err", err)
	}

	queues := make([]chan flow.Input, b.opts.Workers)
	for i := range queues {
		queues[i] = make(chan flow.Input, queueSize)
	}

	var g errgroup.Group
	for i, q := range queues {
		g.Go(func() error {
			b.work(ctx, i, q)
			return nil
		})
	}
	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()
		b.poll(ctx, queues)
		return nil
	})
	return g.Wait()
}

// shard keeps every update of one user on the same worker.
func shard(userID int64, n int) int {
	return int(uint64(userID) % uint64(n))
}

func (b *Bot) poll(ctx context.Context, queues []chan flow.Input) {
	offset := 0
	for ctx.Err() == nil {
		raws, err := b.getUpdates(offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.log.Warn("get updates failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		var ok bool
		if offset, ok = b.route(ctx, raws, queues, offset); !ok {
			return
		}
	}
}

// route hands decoded inputs to their shard and returns the next offset.
// The offset moves past every update, even one that fails to decode.
func (b *Bot) route(ctx context.Context, raws []json.RawMessage, queues []chan flow.Input, offset int) (int, bool) {
	for _, raw := range raws {
		var head struct {
			UpdateID int `json:"update_id"`
		}
		if err := json.Unmarshal(raw, &head); err == nil && head.UpdateID >= offset {
			offset = head.UpdateID + 1
		}

		upd, err := decodeUpdate(raw)
		if err != nil {
			b.log.Error("decode update failed", "update_id", head.UpdateID, "err", err)
			metrics.Update("invalid")
			continue
		}
		metrics.Update(upd.Kind)
		if !upd.OK {
			continue
		}
		q := queues[shard(upd.Input.UserID, len(queues))]
		select {
		case q <- upd.Input:
		case <-ctx.Done():
			return offset, false
		}
	}
	return offset, true
}

// getUpdates is a raw call: Update in v5.5.1 drops fields the engine needs.
func (b *Bot) getUpdates(offset int) ([]json.RawMessage, error) {
	params := tgbotapi.Params{}
	params.AddNonZero("offset", offset)
	params.AddNonZero("timeout", int(b.opts.PollTimeout/time.Second))
	if err := params.AddInterface("allowed_updates", []string{"message", "callback_query"}); err != nil {
		return nil, err
	}
	resp, err := b.api.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(resp.Result, &raws); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return raws, nil
}

func (b *Bot) work(ctx context.Context, id int, q <-chan flow.Input) {
	// начатая обработка доживает до конца даже после сигнала остановки
	base := context.WithoutCancel(ctx)
	for in := range q {
		hctx, cancel := context.WithTimeout(base, handleBudget)
		b.dispatch(hctx, id, in)
		cancel()
	}
}

func (b *Bot) dispatch(ctx context.Context, worker int, in flow.Input) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerError()
			b.log.Error("handler panic", "worker", worker, "user_id", in.UserID, "panic", r)
		}
	}()

	if err := b.handler.Handle(ctx, in); err != nil {
		metrics.HandlerError()
		b.log.Error("handle update failed", "worker", worker, "user_id", in.UserID, "kind", in.Kind.String(), "err", err)
		if err := b.gw.Send(ctx, in.ChatID, flow.Reply{Text: flow.TextInternalError}); err != nil {
			b.log.Warn("send error notice failed", "user_id", in.UserID, "err", err)
		}
	}
}
