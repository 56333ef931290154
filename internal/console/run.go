package console

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/coremodel"
	"github.com/taoyao-code/charge-console/internal/messages"
	"github.com/taoyao-code/charge-console/internal/session"
	"github.com/taoyao-code/charge-console/internal/starttx"
)

// Answer 操作员对提示的应答
type Answer struct {
	Button string           `json:"button,omitempty"`
	Users  []coremodel.User `json:"users,omitempty"`
}

type pendingPrompt struct {
	id      string
	kind    session.PromptKind
	buttons []string
	reply   chan Answer
}

// Run 单次运行的界面端：实现 starttx.Surface / Notifier / Busy，
// 提示写入视图后阻塞等待 Hub.Answer 或 ctx 取消
type Run struct {
	id string
	// actorID 发起人；只有发起人可以应答或取消
	actorID string
	hub     *Hub
	locale  string
	// storeCtx 仅携带值，不随运行取消，保证终态视图可写入
	storeCtx context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	view    *session.View
	pending *pendingPrompt
	done    bool
}

var (
	_ starttx.Surface  = (*Run)(nil)
	_ starttx.Notifier = (*Run)(nil)
	_ starttx.Busy     = (*Run)(nil)
)

// ID 运行 ID
func (r *Run) ID() string { return r.id }

func (r *Run) render(m starttx.Message) messages.Rendered {
	return r.hub.catalog.Render(r.locale, m)
}

func (r *Run) renderPtr(m starttx.Message) *messages.Rendered {
	if m.Key == "" {
		return nil
	}
	out := r.render(m)
	return &out
}

// saveLocked 调用方持有 r.mu
func (r *Run) saveLocked() {
	r.view.UpdatedAt = r.hub.now()
	if err := r.hub.store.Save(r.storeCtx, r.view); err != nil {
		r.hub.logger.Warn("save start run view failed", zap.String("run_id", r.id), zap.Error(err))
	}
}

func (r *Run) notify(level string, title *messages.Rendered, m messages.Rendered) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Notifications = append(r.view.Notifications, session.Notification{
		Level:   level,
		Title:   title,
		Message: m,
		At:      r.hub.now(),
	})
	r.saveLocked()
}

// Inform 提示框不等待关闭，记为一条通知
func (r *Run) Inform(_ context.Context, n starttx.Notice) {
	r.notify("inform", r.renderPtr(n.Title), r.render(n.Message))
}

func (r *Run) ShowSuccess(_ context.Context, m starttx.Message) {
	r.notify("success", nil, r.render(m))
}

func (r *Run) ShowError(_ context.Context, m starttx.Message) {
	r.notify("error", nil, r.render(m))
}

func (r *Run) Show() { r.setBusy(true) }
func (r *Run) Hide() { r.setBusy(false) }

func (r *Run) setBusy(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Busy = v
	if v {
		r.view.State = starttx.StateSubmitting
	}
	r.saveLocked()
}

func (r *Run) Choose(ctx context.Context, p starttx.ChoicePrompt) (starttx.ButtonID, error) {
	buttons := make([]string, len(p.Buttons))
	for i, b := range p.Buttons {
		buttons[i] = string(b)
	}
	a, err := r.ask(ctx, starttx.StateActorSelection, session.Prompt{
		Kind:    session.PromptChoice,
		Title:   r.render(p.Title),
		Message: r.renderPtr(p.Message),
		Buttons: buttons,
	})
	if err != nil {
		return "", err
	}
	return starttx.ButtonID(a.Button), nil
}

func (r *Run) SelectUser(ctx context.Context, p starttx.SelectPrompt) ([]coremodel.User, error) {
	validate := r.render(p.ValidateButton)
	a, err := r.ask(ctx, starttx.StateUserSelection, session.Prompt{
		Kind:         session.PromptSelectUser,
		Title:        r.render(p.Title),
		Message:      &validate,
		SingleSelect: !p.Multiple,
	})
	if err != nil {
		return nil, err
	}
	return a.Users, nil
}

func (r *Run) Confirm(ctx context.Context, p starttx.ConfirmPrompt) (starttx.ButtonType, error) {
	a, err := r.ask(ctx, starttx.StateConfirmation, session.Prompt{
		Kind:    session.PromptConfirm,
		Title:   r.render(p.Title),
		Message: r.renderPtr(p.Message),
		Buttons: []string{string(starttx.ButtonYes), string(starttx.ButtonNo)},
	})
	if err != nil {
		return "", err
	}
	return starttx.ButtonType(a.Button), nil
}

// ask 发布提示并等待应答；任一时刻最多一个待应答提示
func (r *Run) ask(ctx context.Context, state starttx.State, p session.Prompt) (Answer, error) {
	p.ID = r.hub.newID()
	pp := &pendingPrompt{id: p.ID, kind: p.Kind, buttons: p.Buttons, reply: make(chan Answer, 1)}

	r.mu.Lock()
	r.pending = pp
	r.view.State = state
	r.view.Prompt = &p
	r.saveLocked()
	r.mu.Unlock()
	r.hub.metrics.PromptOpened()

	defer func() {
		r.hub.metrics.PromptClosed()
		r.mu.Lock()
		if r.pending == pp {
			r.pending = nil
		}
		if r.view.Prompt != nil && r.view.Prompt.ID == p.ID {
			r.view.Prompt = nil
		}
		r.saveLocked()
		r.mu.Unlock()
	}()

	select {
	case a := <-pp.reply:
		return a, nil
	case <-ctx.Done():
		return Answer{}, ctx.Err()
	}
}

// answer 投递应答；校验提示 ID 与可选按钮
func (r *Run) answer(promptID string, a Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return ErrRunNotFound
	}
	pp := r.pending
	if pp == nil {
		return ErrNoPendingPrompt
	}
	if pp.id != promptID {
		return ErrPromptMismatch
	}
	switch pp.kind {
	case session.PromptChoice, session.PromptConfirm:
		if !slices.Contains(pp.buttons, a.Button) {
			return ErrInvalidAnswer
		}
	}
	r.pending = nil
	pp.reply <- a
	return nil
}

func (r *Run) finish(res starttx.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	r.pending = nil
	r.view.State = res.State
	r.view.Reason = res.Reason
	r.view.Busy = false
	r.view.Prompt = nil
	r.view.TargetUserID = res.TargetUserID
	r.view.TagID = res.TagID
	r.saveLocked()
}

func (r *Run) setStation(st *coremodel.ChargingStation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Station = st
	r.saveLocked()
}
