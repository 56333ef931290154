package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/coremodel"
	"github.com/taoyao-code/charge-console/internal/messages"
	"github.com/taoyao-code/charge-console/internal/metrics"
	"github.com/taoyao-code/charge-console/internal/session"
	"github.com/taoyao-code/charge-console/internal/starttx"
	"github.com/taoyao-code/charge-console/internal/storage"
	"github.com/taoyao-code/charge-console/internal/storage/models"
)

const auditTimeout = 5 * time.Second

// Initiator 启动交易工作流
type Initiator interface {
	Initiate(ctx context.Context, env starttx.Env, req starttx.Request) starttx.Result
}

// StationSource 接受后刷新充电站快照
type StationSource interface {
	GetChargingStation(ctx context.Context, id coremodel.StationID) (*coremodel.ChargingStation, error)
}

// Hub 运行调度：每次启动在独立 goroutine 中执行工作流，
// 提示通过视图暴露给操作员，应答经 Answer 回投
type Hub struct {
	ctrl     Initiator
	store    session.Store
	catalog  *messages.Catalog
	audit    storage.AuditRepo
	stations StationSource
	metrics  *metrics.AppMetrics
	logger   *zap.Logger

	mu      sync.Mutex
	runs    map[string]*Run
	closing bool
	wg      sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// Option Hub 选项
type Option func(*Hub)

// WithAudit 终态写入审计库
func WithAudit(repo storage.AuditRepo) Option { return func(h *Hub) { h.audit = repo } }

// WithStationSource 接受后刷新站点快照
func WithStationSource(src StationSource) Option { return func(h *Hub) { h.stations = src } }

// WithMetrics 设置指标
func WithMetrics(m *metrics.AppMetrics) Option { return func(h *Hub) { h.metrics = m } }

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithNow 替换时钟（测试）
func WithNow(fn func() time.Time) Option {
	return func(h *Hub) {
		if fn != nil {
			h.now = fn
		}
	}
}

// NewHub 创建 Hub；catalog 为空时使用内置文案
func NewHub(ctrl Initiator, store session.Store, catalog *messages.Catalog, opts ...Option) *Hub {
	if catalog == nil {
		catalog = messages.Default()
	}
	h := &Hub{
		ctrl:    ctrl,
		store:   store,
		catalog: catalog,
		logger:  zap.NewNop(),
		runs:    make(map[string]*Run),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StartRequest 启动请求
type StartRequest struct {
	Station   *coremodel.ChargingStation
	Connector *coremodel.Connector
	Actor     *coremodel.UserToken
	Locale    string
}

// Start 创建运行并异步执行，返回运行 ID。
// ctx 只提供值（访问令牌、trace），其取消不影响运行。
func (h *Hub) Start(ctx context.Context, req StartRequest) (string, error) {
	id := h.newID()
	storeCtx := context.WithoutCancel(ctx)
	runCtx, cancel := context.WithCancel(storeCtx)

	now := h.now()
	view := &session.View{
		RunID:     id,
		State:     starttx.StateChecking,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Station != nil {
		view.StationID = string(req.Station.ID)
	}
	if req.Connector != nil {
		view.ConnectorID = int32(req.Connector.ConnectorID)
	}
	if req.Actor != nil {
		view.ActorID = req.Actor.ID
	}
	r := &Run{id: id, actorID: view.ActorID, hub: h, locale: req.Locale, storeCtx: storeCtx, cancel: cancel, view: view}

	h.mu.Lock()
	if h.closing {
		h.mu.Unlock()
		cancel()
		return "", ErrShuttingDown
	}
	h.runs[id] = r
	h.wg.Add(1)
	h.mu.Unlock()

	if err := h.store.Save(storeCtx, view); err != nil {
		h.mu.Lock()
		delete(h.runs, id)
		h.mu.Unlock()
		h.wg.Done()
		cancel()
		return "", err
	}

	sreq := starttx.Request{
		RunID:     id,
		Station:   req.Station,
		Connector: req.Connector,
		Actor:     req.Actor,
	}
	if h.stations != nil && req.Station != nil {
		stationID := req.Station.ID
		sreq.Refresh = func(ctx context.Context) error {
			st, err := h.stations.GetChargingStation(ctx, stationID)
			if err != nil {
				return err
			}
			r.setStation(st)
			return nil
		}
	}

	h.metrics.RunStarted()
	go h.execute(runCtx, r, sreq, now)
	return id, nil
}

func (h *Hub) execute(ctx context.Context, r *Run, req starttx.Request, started time.Time) {
	defer h.wg.Done()
	defer h.metrics.RunFinished()
	defer r.cancel()

	res := h.ctrl.Initiate(ctx, starttx.Env{Surface: r, Notifier: r, Busy: r}, req)
	r.finish(res)

	h.mu.Lock()
	delete(h.runs, r.id)
	h.mu.Unlock()

	h.record(r.storeCtx, res, started)
}

func (h *Hub) record(ctx context.Context, res starttx.Result, started time.Time) {
	if h.audit == nil {
		return
	}
	a := &models.StartAttempt{
		RunID:       res.RunID,
		StationID:   string(res.StationID),
		ConnectorID: int32(res.ConnectorID),
		ActorID:     res.ActorID,
		TargetName:  res.TargetName,
		State:       string(res.State),
		Reason:      string(res.Reason),
		Submitted:   res.Submitted,
		StartedAt:   started,
		FinishedAt:  h.now(),
	}
	if res.TargetUserID != "" {
		a.TargetUserID = &res.TargetUserID
	}
	if res.TagID != "" {
		a.TagID = &res.TagID
	}
	if res.Err != nil {
		s := res.Err.Error()
		a.ErrorText = &s
	}

	ctx, cancel := context.WithTimeout(ctx, auditTimeout)
	defer cancel()
	if err := h.audit.RecordAttempt(ctx, a); err != nil {
		h.logger.Warn("record start attempt failed", zap.String("run_id", res.RunID), zap.Error(err))
	}
}

// lookup 按运行 ID 与发起人查找进行中的运行；非发起人视同不存在
func (h *Hub) lookup(runID, actorID string) (*Run, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.runs[runID]
	if !ok || r.actorID != actorID {
		return nil, ErrRunNotFound
	}
	return r, nil
}

// Get 读取运行视图（含已结束、未过期的运行），仅发起人可见
func (h *Hub) Get(ctx context.Context, runID, actorID string) (*session.View, error) {
	v, err := h.store.Get(ctx, runID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.ActorID != actorID {
		return nil, ErrRunNotFound
	}
	return v, nil
}

// Answer 发起人应答当前提示
func (h *Hub) Answer(runID, actorID, promptID string, a Answer) error {
	r, err := h.lookup(runID, actorID)
	if err != nil {
		return err
	}
	return r.answer(promptID, a)
}

// Cancel 发起人取消运行：等待中的提示按用户取消处理，已提交的请求不撤回
func (h *Hub) Cancel(runID, actorID string) error {
	r, err := h.lookup(runID, actorID)
	if err != nil {
		return err
	}
	r.cancel()
	return nil
}

// Active 进行中的运行数
func (h *Hub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.runs)
}

// Shutdown 拒绝新运行并取消进行中的运行，等待其结束或 ctx 到期
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	for _, r := range h.runs {
		r.cancel()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
