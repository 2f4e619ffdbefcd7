package flow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Spok95/absence-bot/internal/dialog"
	"github.com/Spok95/absence-bot/internal/domain/users"
	"github.com/Spok95/absence-bot/internal/infra/metrics"
	"github.com/Spok95/absence-bot/internal/storage"
)

type Options struct {
	OwnerID       int64 // 0 disables /feedback
	FeedbackLimit int
	StateTTL      time.Duration // 0 keeps open flows forever
	Now           func() time.Time
}

type Engine struct {
	store    storage.Store
	states   dialog.Store
	gw       Gateway
	exporter Exporter
	log      *slog.Logger
	opts     Options
	locks    *dialog.Locker

	commands map[string]command
	steps    map[dialog.State]step
}

type command func(ctx context.Context, s *session) (Result, error)

type step struct {
	accepts InputKind
	run     func(ctx context.Context, s *session) (Result, error)
}

// session is one Handle call.
type session struct {
	in      Input
	user    *users.User
	item    *dialog.Item
	replies []Reply
	toast   string
}

func (s *session) say(text string, kb Keyboard) {
	s.replies = append(s.replies, Reply{Text: text, Keyboard: kb})
}

func (s *session) payload() dialog.Payload {
	return s.item.Payload.Clone()
}

func New(store storage.Store, states dialog.Store, gw Gateway, exporter Exporter, log *slog.Logger, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		store:    store,
		states:   states,
		gw:       gw,
		exporter: exporter,
		log:      log,
		opts:     opts,
		locks:    dialog.NewLocker(),
	}
	e.commands = map[string]command{
		"start":                  e.cmdStart,
		"help":                   e.cmdHelp,
		"cancel":                 e.cmdCancel,
		"setutcoffset":           e.cmdSetUTCOffset,
		"feedback":               e.cmdFeedback,
		"creategroup":            e.cmdCreateGroup,
		"addmembers":             e.cmdAddMembers,
		"deletegroup":            e.cmdDeleteGroup,
		"removemembers":          e.cmdRemoveMembers,
		"assignreportsrecipient": e.cmdAssignRecipient,
		"createreport":           e.cmdCreateReport,
		"getstatistics":          e.cmdGetStatistics,
		"getreportsfile":         e.cmdGetReportsFile,
	}
	// Какой ввод принимает каждый шаг
	e.steps = map[dialog.State]step{
		dialog.StateSetUTCOffset:            {InputText, e.stepUTCOffset},
		dialog.StateFeedbackText:            {InputText, e.stepFeedback},
		dialog.StateCreateGroupName:         {InputText, e.stepCreateGroup},
		dialog.StateAddMembersSelectGroup:   {InputText, e.stepAddMembersGroup},
		dialog.StateAddMembersMembers:       {InputText, e.stepAddMember},
		dialog.StateDeleteGroupSelectGroup:  {InputText, e.stepDeleteGroupSelect},
		dialog.StateDeleteGroupConfirm:      {InputText, e.stepDeleteGroupConfirm},
		dialog.StateRemoveMembersSelect:     {InputText, e.stepRemoveMembersGroup},
		dialog.StateRemoveMembersMembers:    {InputText, e.stepRemoveMember},
		dialog.StateAssignRecipientSelect:   {InputText, e.stepAssignGroup},
		dialog.StateAssignRecipientUser:     {InputSharedUser, e.stepAssignUser},
		dialog.StateCreateReportSelectGroup: {InputText, e.stepReportGroup},
		dialog.StateCreateReportPickMembers: {InputCallback, e.stepReportPick},
		dialog.StateStatsSelectGroup:        {InputText, e.stepQueryGroup},
		dialog.StateStatsDateFrom:           {InputText, e.stepQueryDateFrom},
		dialog.StateStatsDateTo:             {InputText, e.stepQueryDateTo},
		dialog.StateFileSelectGroup:         {InputText, e.stepQueryGroup},
		dialog.StateFileDateFrom:            {InputText, e.stepQueryDateFrom},
		dialog.StateFileDateTo:              {InputText, e.stepQueryDateTo},
		dialog.StateFileFormat:              {InputText, e.stepFileFormat},
	}
	return e
}

// Accepts reports the input kind a state expects.
func (e *Engine) Accepts(state dialog.State) (InputKind, bool) {
	st, ok := e.steps[state]
	return st.accepts, ok
}

// Handle processes one inbound event for in.UserID. Events of the same user
// are serialized. Rejections are answered to the user and return nil; a
// non-nil error means storage or rendering failed.
func (e *Engine) Handle(ctx context.Context, in Input) error {
	unlock := e.locks.Lock(in.UserID)
	defer unlock()

	s := &session{in: in}
	if in.Kind == InputCallback {
		defer func() {
			if err := e.gw.Answer(ctx, in.CallbackID, s.toast); err != nil {
				e.log.Warn("answer callback failed", "user_id", in.UserID, "err", err)
			}
		}()
	}

	u, err := e.store.Users.Init(ctx, in.UserID)
	if err != nil {
		return fmt.Errorf("init user: %w", err)
	}
	s.user = u

	item, err := e.states.Get(ctx, in.UserID)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if !item.Idle() && e.expired(item) {
		if err := e.states.Reset(ctx, in.UserID); err != nil {
			return fmt.Errorf("reset expired state: %w", err)
		}
		metrics.FlowFinished(item.State.Flow(), "expired")
		e.log.Debug("dialog state expired", "user_id", in.UserID, "state", item.State)
		item = &dialog.Item{UserID: in.UserID, State: dialog.StateIdle, Payload: dialog.Payload{}}
	}
	if item.Payload == nil {
		item.Payload = dialog.Payload{}
	}
	s.item = item

	var res Result
	if item.Idle() {
		res, err = e.dispatchIdle(ctx, s)
	} else {
		res, err = e.dispatchActive(ctx, s)
	}
	if err != nil {
		e.discard(s)
		return err
	}
	if err := e.apply(ctx, s, res); err != nil {
		e.discard(s)
		return err
	}
	e.flush(ctx, s)
	return nil
}

func (e *Engine) expired(item *dialog.Item) bool {
	if e.opts.StateTTL <= 0 || item.UpdatedAt.IsZero() {
		return false
	}
	return e.opts.Now().Sub(item.UpdatedAt) > e.opts.StateTTL
}

// parseCommand returns the command name of "/name" or "/name@bot args".
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	if name == "" {
		return "", false
	}
	return name, true
}

func (e *Engine) dispatchIdle(ctx context.Context, s *session) (Result, error) {
	switch s.in.Kind {
	case InputCallback:
		return Reject(invalid(textStaleButton)), nil
	case InputText:
		name, ok := parseCommand(s.in.Text)
		if !ok {
			return Reject(invalid(textUnknownCommand)), nil
		}
		cmd, ok := e.commands[name]
		if !ok {
			return Reject(invalid(textUnknownCommand)), nil
		}
		return cmd(ctx, s)
	case InputSharedUser:
		return Reject(invalid(textUnknownCommand)), nil
	default:
		return Reject(invalid(textNotText)), nil
	}
}

func (e *Engine) dispatchActive(ctx context.Context, s *session) (Result, error) {
	if s.in.Kind == InputText {
		if name, ok := parseCommand(s.in.Text); ok {
			if name == "cancel" {
				return e.cmdCancel(ctx, s)
			}
			if _, reserved := e.commands[name]; reserved {
				return Reject(invalid(textCommandBusy)), nil
			}
		}
	}

	st, ok := e.steps[s.item.State]
	if !ok {
		e.log.Warn("unknown dialog state", "user_id", s.in.UserID, "state", s.item.State)
		return Reject(aborted(NotFound, textStateLost)), nil
	}
	if s.in.Kind != st.accepts {
		return Reject(invalid(mismatch(st.accepts, s.in.Kind))), nil
	}
	return st.run(ctx, s)
}

// mismatch picks the re-prompt for input of the wrong kind.
func mismatch(want, got InputKind) string {
	switch {
	case got == InputCallback:
		return textStaleButton
	case want == InputCallback && got == InputText:
		return textUseButtons
	case want == InputSharedUser:
		return textUseRecipientButton
	default:
		return textNotText
	}
}

func (e *Engine) apply(ctx context.Context, s *session, res Result) error {
	uid := s.in.UserID
	switch res.Kind {
	case ResultContinue:
		if err := e.states.Set(ctx, uid, res.Next, res.Payload); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		if s.item.Idle() {
			metrics.FlowStarted(res.Next.Flow())
		}
	case ResultComplete:
		if s.item.Idle() {
			return nil
		}
		if err := e.states.Reset(ctx, uid); err != nil {
			return fmt.Errorf("reset state: %w", err)
		}
		outcome := res.outcome
		if outcome == "" {
			outcome = "completed"
		}
		metrics.FlowFinished(s.item.State.Flow(), outcome)
		s.dropKeyboard()
	case ResultRejected:
		rej := res.Err
		metrics.StepRejected(rej.Kind.String())
		if rej.Abort && !s.item.Idle() {
			if err := e.states.Reset(ctx, uid); err != nil {
				return fmt.Errorf("reset state: %w", err)
			}
			metrics.FlowFinished(s.item.State.Flow(), "aborted")
			s.say(rej.Msg, removeKeyboard())
			return nil
		}
		if s.in.Kind == InputCallback {
			s.toast = rej.Msg
			return nil
		}
		s.say(rej.Msg, Keyboard{})
	}
	return nil
}

// dropKeyboard makes the last reply remove the step keyboard.
func (s *session) dropKeyboard() {
	if len(s.replies) == 0 {
		return
	}
	last := &s.replies[len(s.replies)-1]
	if last.Keyboard.Kind == KeyboardNone {
		last.Keyboard = removeKeyboard()
	}
}

func (e *Engine) flush(ctx context.Context, s *session) {
	for _, r := range s.replies {
		if err := e.gw.Send(ctx, s.in.ChatID, r); err != nil {
			e.log.Error("send reply failed", "user_id", s.in.UserID, "err", err)
		}
		e.removeDocument(r)
	}
}

// discard drops undelivered replies together with their export files.
func (e *Engine) discard(s *session) {
	for _, r := range s.replies {
		e.removeDocument(r)
	}
	s.replies = nil
}

func (e *Engine) removeDocument(r Reply) {
	if r.Document == nil {
		return
	}
	if err := os.Remove(r.Document.Path); err != nil && !os.IsNotExist(err) {
		e.log.Warn("remove export file failed", "path", r.Document.Path, "err", err)
	}
}

// notify sends text to another user. Failure is a warning for the author.
func (e *Engine) notify(ctx context.Context, tgID int64, text, warning string) *Error {
	if err := e.gw.Send(ctx, tgID, Reply{Text: text}); err != nil {
		metrics.NotificationFailed()
		e.log.Warn("notification failed", "to", tgID, "err", err)
		return transport(warning)
	}
	return nil
}
