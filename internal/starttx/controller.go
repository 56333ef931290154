package starttx

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/coremodel"
)

const tracerName = "github.com/taoyao-code/charge-console/internal/starttx"

// Controller 启动交易工作流控制器，可被多个运行并发复用（无可变状态）
type Controller struct {
	auth     Authorizer
	gateway  Gateway
	logger   *zap.Logger
	tracer   trace.Tracer
	observer Observer
	newRunID func() string
}

// Option 控制器选项
type Option func(*Controller)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer 设置 tracer（默认取全局 TracerProvider）
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithObserver 设置终态观察者
func WithObserver(observer Observer) Option {
	return func(c *Controller) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// NewController 创建控制器
func NewController(auth Authorizer, gateway Gateway, opts ...Option) *Controller {
	if auth == nil {
		auth = RoleAuthorizer
	}
	c := &Controller{
		auth:     auth,
		gateway:  gateway,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
		observer: ObserverFunc(nil),
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initiate 运行一次启动交易工作流，阻塞直到终态。
// 所有结果都通过 env 通知，返回值仅用于观测与测试。
func (c *Controller) Initiate(ctx context.Context, env Env, req Request) Result {
	if req.RunID == "" {
		req.RunID = c.newRunID()
	}
	if env.Busy == nil {
		env.Busy = nopBusy{}
	}

	r := &run{c: c, env: env, req: req}
	r.result = Result{RunID: req.RunID}
	if req.Station != nil {
		r.result.StationID = req.Station.ID
	}
	if req.Connector != nil {
		r.result.ConnectorID = req.Connector.ConnectorID
	}
	if req.Actor != nil {
		r.result.ActorID = req.Actor.ID
	}

	ctx, span := c.tracer.Start(ctx, "starttx.Initiate", trace.WithAttributes(
		attribute.String("run.id", req.RunID),
		attribute.String("station.id", string(r.result.StationID)),
		attribute.Int("connector.id", int(r.result.ConnectorID)),
	))
	defer span.End()

	final := r.drive(ctx, span)
	r.result.State = final

	span.SetAttributes(
		attribute.String("run.state", string(final)),
		attribute.String("run.reason", string(r.result.Reason)),
		attribute.Bool("run.submitted", r.result.Submitted),
	)
	if final == StateFailed {
		span.SetStatus(codes.Error, string(r.result.Reason))
	}

	c.observer.Record(final, r.result.Reason)
	c.logger.Info("start transaction run finished",
		zap.String("run_id", req.RunID),
		zap.String("station_id", string(r.result.StationID)),
		zap.Int32("connector_id", int32(r.result.ConnectorID)),
		zap.String("actor_id", r.result.ActorID),
		zap.String("target_user_id", r.result.TargetUserID),
		zap.String("state", string(final)),
		zap.String("reason", string(r.result.Reason)),
		zap.Bool("submitted", r.result.Submitted),
		zap.Error(r.result.Err))
	return r.result
}

type stepFunc func(r *run, ctx context.Context) State

// transitions 非终态 -> 处理函数，处理函数返回下一状态
var transitions = map[State]stepFunc{
	StateChecking:       (*run).check,
	StateActorSelection: (*run).selectActor,
	StateUserSelection:  (*run).selectUser,
	StateTagResolution:  (*run).resolveTag,
	StateConfirmation:   (*run).confirm,
	StateSubmitting:     (*run).submit,
}

// run 单次运行的上下文
type run struct {
	c   *Controller
	env Env
	req Request

	// target 为 nil 表示为登录用户本人发起
	target *coremodel.User
	tagID  string
	result Result
}

func (r *run) drive(ctx context.Context, span trace.Span) State {
	st := StateChecking
	for !st.Terminal() {
		step, ok := transitions[st]
		if !ok {
			r.result.Reason = ReasonInvalidRequest
			return StateAborted
		}
		span.AddEvent("enter", trace.WithAttributes(attribute.String("state", string(st))))
		r.c.logger.Debug("start transaction run state",
			zap.String("run_id", r.req.RunID),
			zap.String("state", string(st)))
		st = step(r, ctx)
	}
	return st
}

func (r *run) abort(reason Reason) State {
	r.result.Reason = reason
	return StateAborted
}

// targetActor 已解析的目标参与者（用于显示名）
func (r *run) targetActor() coremodel.NamedActor {
	if r.target != nil {
		return r.target
	}
	return r.req.Actor
}

func (r *run) targetParams() map[string]string {
	return map[string]string{
		ParamChargeBoxID: string(r.req.Station.ID),
		ParamUserName:    coremodel.BuildUserFullName(r.targetActor()),
	}
}

// check 前置条件：停用 -> 不可用 -> 交易进行中，按序只报第一个
func (r *run) check(ctx context.Context) State {
	station, connector := r.req.Station, r.req.Connector
	if station == nil || connector == nil || r.req.Actor == nil {
		return r.abort(ReasonInvalidRequest)
	}
	if station.Inactive {
		r.env.Surface.Inform(ctx, startErrorNotice(KeyStationInactive))
		return r.abort(ReasonStationInactive)
	}
	if connector.Status.IsUnavailable() {
		r.env.Surface.Inform(ctx, startErrorNotice(KeyConnectorNotAvailable))
		return r.abort(ReasonConnectorUnavailable)
	}
	if connector.HasTransaction() {
		r.env.Surface.Inform(ctx, startErrorNotice(KeyTransactionInProgress))
		return r.abort(ReasonTransactionInProgress)
	}
	if !station.Owns(connector.ConnectorID) {
		r.env.Surface.Inform(ctx, startErrorNotice(KeyConnectorNotFound))
		return r.abort(ReasonMismatchedConnector)
	}
	return StateActorSelection
}

func (r *run) selectActor(ctx context.Context) State {
	if !r.c.auth.HasElevatedPrivilege(r.req.Actor) {
		return StateTagResolution
	}
	button, err := r.env.Surface.Choose(ctx, ChoicePrompt{
		Title:   msg(KeyAdminChoiceTitle),
		Message: msg(KeyAdminChoiceMessage),
		Buttons: []ButtonID{ButtonForMyself, ButtonSelectUser},
	})
	if err != nil {
		return r.abort(ReasonCancelled)
	}
	switch button {
	case ButtonForMyself:
		return StateTagResolution
	case ButtonSelectUser:
		return StateUserSelection
	default:
		return r.abort(ReasonCancelled)
	}
}

func (r *run) selectUser(ctx context.Context) State {
	users, err := r.env.Surface.SelectUser(ctx, SelectPrompt{
		Title:          msg(KeyUserSelectTitle),
		ValidateButton: msg(KeyUserSelectButton),
		Multiple:       false,
	})
	if err != nil || len(users) == 0 {
		return r.abort(ReasonCancelled)
	}
	if len(users) > 1 {
		r.c.logger.Warn("single selection returned several users, using the first",
			zap.String("run_id", r.req.RunID),
			zap.Int("count", len(users)))
	}
	selected := users[0]
	r.target = &selected
	r.result.TargetUserID = selected.ID
	return StateTagResolution
}

// resolveTag 选中用户取第一张 active 卡；本人取 tagIDs 第一项
func (r *run) resolveTag(ctx context.Context) State {
	r.result.TargetName = coremodel.BuildUserFullName(r.targetActor())

	var (
		tagID string
		ok    bool
	)
	if r.target != nil {
		tagID, ok = r.target.FirstActiveTag()
	} else {
		tagID, ok = r.req.Actor.FirstTagID()
	}
	if !ok || tagID == "" {
		r.env.Notifier.ShowError(ctx, Message{
			Key:      KeyMissingActiveTag,
			Params:   r.targetParams(),
			Category: CategoryAction,
		})
		return r.abort(ReasonMissingTag)
	}
	r.tagID = tagID
	r.result.TagID = tagID
	return StateConfirmation
}

func (r *run) confirm(ctx context.Context) State {
	answer, err := r.env.Surface.Confirm(ctx, ConfirmPrompt{
		Title:   msg(KeyConfirmTitle),
		Message: Message{Key: KeyConfirmMessage, Params: r.targetParams()},
	})
	if err != nil || answer != ButtonYes {
		return r.abort(ReasonCancelled)
	}
	return StateSubmitting
}

func (r *run) submit(ctx context.Context) State {
	stationID := r.req.Station.ID
	resp, err := r.callGateway(ctx)
	r.result.Submitted = true

	if err != nil {
		r.result.Err = err
		r.result.Reason = ReasonTransportFailure
		r.env.Notifier.ShowError(ctx, HandleTransportError(err, KeyStartError))
		return StateFailed
	}

	params := map[string]string{ParamChargeBoxID: string(stationID)}
	if !resp.Accepted() {
		r.result.Reason = ReasonRejected
		r.c.logger.Warn("start transaction rejected",
			zap.String("run_id", r.req.RunID),
			zap.String("station_id", string(stationID)),
			zap.String("status", string(resp.Status)))
		r.env.Notifier.ShowError(ctx, Message{Key: KeyStartError, Params: params, Category: CategoryAction})
		return StateFailed
	}

	r.result.Reason = ReasonAccepted
	r.env.Notifier.ShowSuccess(ctx, Message{Key: KeyStartSuccess, Params: params})
	if r.req.Refresh != nil {
		r.fireRefresh(ctx)
	}
	return StateCompleted
}

// callGateway Show/Hide 成对，网关 panic 时同样 Hide
func (r *run) callGateway(ctx context.Context) (coremodel.ActionResponse, error) {
	r.env.Busy.Show()
	defer r.env.Busy.Hide()
	if r.c.gateway == nil {
		return coremodel.ActionResponse{}, errGatewayNotConfigured
	}
	return r.c.gateway.StartTransaction(ctx, r.req.Station.ID, r.req.Connector.ConnectorID, r.tagID)
}

func (r *run) fireRefresh(ctx context.Context) {
	refresh := r.req.Refresh
	detached := context.WithoutCancel(ctx)
	logger := r.c.logger
	runID := r.req.RunID
	go func() {
		if err := refresh(detached); err != nil {
			logger.Debug("refresh after start failed", zap.String("run_id", runID), zap.Error(err))
		}
	}()
}

type nopBusy struct{}

func (nopBusy) Show() {}
func (nopBusy) Hide() {}
