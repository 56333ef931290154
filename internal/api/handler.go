package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/api/middleware"
	"github.com/taoyao-code/charge-console/internal/centralserver"
	"github.com/taoyao-code/charge-console/internal/console"
	"github.com/taoyao-code/charge-console/internal/coremodel"
	"github.com/taoyao-code/charge-console/internal/messages"
	"github.com/taoyao-code/charge-console/internal/session"
	"github.com/taoyao-code/charge-console/internal/starttx"
	"github.com/taoyao-code/charge-console/internal/storage"
	"github.com/taoyao-code/charge-console/internal/storage/models"
)

// RunHub 运行调度（console.Hub）；Get/Answer/Cancel 只对发起人生效
type RunHub interface {
	Start(ctx context.Context, req console.StartRequest) (string, error)
	Get(ctx context.Context, runID, actorID string) (*session.View, error)
	Answer(runID, actorID, promptID string, a console.Answer) error
	Cancel(runID, actorID string) error
}

// StationFetcher 从中心服务读取实时快照
type StationFetcher interface {
	GetChargingStation(ctx context.Context, id coremodel.StationID) (*coremodel.ChargingStation, error)
}

// StartHandler 远程启动交易相关接口
type StartHandler struct {
	hub      RunHub
	stations StationFetcher
	audit    storage.AuditRepo
	catalog  *messages.Catalog
	dedup    session.Deduper
	logger   *zap.Logger
}

// HeaderIdempotencyKey 客户端重试同一启动请求时携带相同的键
const HeaderIdempotencyKey = "Idempotency-Key"

// NewStartHandler 创建处理器；stations/audit 可为空
func NewStartHandler(hub RunHub, stations StationFetcher, audit storage.AuditRepo, catalog *messages.Catalog, logger *zap.Logger) *StartHandler {
	if catalog == nil {
		catalog = messages.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StartHandler{hub: hub, stations: stations, audit: audit, catalog: catalog, logger: logger}
}

// UseDeduper 启用幂等键去重
func (h *StartHandler) UseDeduper(d session.Deduper) *StartHandler {
	h.dedup = d
	return h
}

// StandardResponse 标准响应格式
type StandardResponse struct {
	Code      int         `json:"code"`           // 0=成功, >0=错误码
	Message   string      `json:"message"`        // 消息
	Data      interface{} `json:"data,omitempty"` // 业务数据
	RequestID string      `json:"request_id"`     // 请求追踪ID
	Timestamp int64       `json:"timestamp"`      // 时间戳
}

// StartBody 启动请求体，整体可省略。
// 配置了中心服务时始终以实时快照为准，Station 仅用于核对 ID。
type StartBody struct {
	Station *coremodel.ChargingStation `json:"station,omitempty"`
}

// StartAccepted 启动受理结果；Duplicate 表示按幂等键返回了已有运行
type StartAccepted struct {
	RunID     string `json:"run_id"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// AnswerBody 提示应答
type AnswerBody struct {
	PromptID string `json:"prompt_id" binding:"required"`
	Button   string `json:"button,omitempty"`
	// Users 选择用户提示的结果。服务端不再向中心服务核对，
	// 所选用户及其卡号按发起人（管理员）提交的内容使用
	Users []coremodel.User `json:"users,omitempty"`
}

func (h *StartHandler) respond(c *gin.Context, status int, msg string, data interface{}) {
	code := 0
	if status >= http.StatusBadRequest {
		code = status
	}
	c.JSON(status, StandardResponse{
		Code:      code,
		Message:   msg,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

func (h *StartHandler) respondWithError(c *gin.Context, status int, msg string, data interface{}) {
	h.respond(c, status, msg, data)
}

// StartTransaction 发起远程启动
// @Summary 远程启动交易
// @Description 校验充电桩与枪口后异步执行启动流程，返回运行 ID；提示通过运行视图轮询与应答
// @Tags 启动交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param station_id path string true "充电桩ID"
// @Param connector_id path int true "枪口编号"
// @Param Accept-Language header string false "文案语言"
// @Param Idempotency-Key header string false "幂等键"
// @Param request body StartBody false "充电桩快照（仅在未配置中心服务时使用）"
// @Success 202 {object} StandardResponse{data=StartAccepted} "已受理"
// @Failure 400 {object} StandardResponse "参数错误"
// @Failure 401 {object} StandardResponse "未登录"
// @Failure 409 {object} StandardResponse "同一幂等键的请求处理中"
// @Failure 502 {object} StandardResponse "中心服务错误"
// @Failure 503 {object} StandardResponse "服务不可用"
// @Router /api/v1/charging-stations/{station_id}/connectors/{connector_id}/start [post]
func (h *StartHandler) StartTransaction(c *gin.Context) {
	stationID := coremodel.StationID(strings.TrimSpace(c.Param("station_id")))
	if stationID == "" {
		h.respondWithError(c, http.StatusBadRequest, "station_id is required", nil)
		return
	}
	connectorNo, err := strconv.ParseInt(c.Param("connector_id"), 10, 32)
	if err != nil || connectorNo <= 0 {
		h.respondWithError(c, http.StatusBadRequest, "connector_id must be a positive integer", nil)
		return
	}
	connectorID := coremodel.ConnectorID(connectorNo)

	actor, ok := middleware.Actor(c)
	if !ok {
		h.respondWithError(c, http.StatusUnauthorized, "actor required", nil)
		return
	}

	var body StartBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.respondWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), nil)
		return
	}

	ctx := centralserver.WithAccessToken(c.Request.Context(), middleware.AccessToken(c))
	locale := c.GetHeader("Accept-Language")

	idemKey, done := h.reserve(c, actor.ID)
	if done {
		return
	}
	bound := false
	defer func() {
		if idemKey != "" && !bound {
			_ = h.dedup.Release(context.WithoutCancel(ctx), idemKey)
		}
	}()

	if body.Station != nil && body.Station.ID != "" && body.Station.ID != stationID {
		h.respondWithError(c, http.StatusBadRequest, "station id in body does not match path", nil)
		return
	}

	// 前置条件按中心服务的实时状态判断；请求体快照只在无中心服务时使用
	station := body.Station
	if h.stations != nil {
		station, err = h.stations.GetChargingStation(ctx, stationID)
		if err != nil {
			h.handleFetchError(c, locale, stationID, err)
			return
		}
		if station == nil {
			h.respondWithError(c, http.StatusBadGateway, "central server returned no station", nil)
			return
		}
	}
	if station == nil {
		h.respondWithError(c, http.StatusBadRequest, "station snapshot is required", nil)
		return
	}
	if station.ID == "" {
		station.ID = stationID
	}

	// 快照缺少该枪口时仍下发，由工作流判定为枪口不匹配
	connector, found := station.ConnectorByID(connectorID)
	if !found {
		connector = &coremodel.Connector{ConnectorID: connectorID}
	}

	runID, err := h.hub.Start(ctx, console.StartRequest{
		Station:   station,
		Connector: connector,
		Actor:     actor,
		Locale:    locale,
	})
	if err != nil {
		if errors.Is(err, console.ErrShuttingDown) {
			h.respondWithError(c, http.StatusServiceUnavailable, "server is shutting down", nil)
			return
		}
		h.logger.Error("start run failed",
			zap.String("station_id", string(stationID)),
			zap.Int32("connector_id", int32(connectorID)),
			zap.Error(err))
		h.respondWithError(c, http.StatusInternalServerError, "start run failed", nil)
		return
	}

	if idemKey != "" {
		if err := h.dedup.Bind(context.WithoutCancel(ctx), idemKey, runID); err != nil {
			h.logger.Warn("bind idempotency key failed", zap.String("run_id", runID), zap.Error(err))
		}
		bound = true
	}

	h.logger.Info("start run accepted",
		zap.String("run_id", runID),
		zap.String("station_id", string(stationID)),
		zap.Int32("connector_id", int32(connectorID)),
		zap.String("actor_id", actor.ID))
	h.respond(c, http.StatusAccepted, "accepted", StartAccepted{RunID: runID})
}

// reserve 预占幂等键；done=true 表示已写出响应
func (h *StartHandler) reserve(c *gin.Context, actorID string) (key string, done bool) {
	raw := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if h.dedup == nil || raw == "" {
		return "", false
	}
	key = actorID + ":" + raw
	existing, err := h.dedup.Reserve(c.Request.Context(), key)
	switch {
	case errors.Is(err, session.ErrDuplicateInFlight):
		h.respondWithError(c, http.StatusConflict, "duplicate start request in progress", nil)
		return "", true
	case err != nil:
		// 去重不可用时不阻断启动
		h.logger.Warn("reserve idempotency key failed", zap.String("actor_id", actorID), zap.Error(err))
		return "", false
	case existing != "":
		h.respond(c, http.StatusAccepted, "accepted", StartAccepted{RunID: existing, Duplicate: true})
		return "", true
	}
	return key, false
}

func (h *StartHandler) handleFetchError(c *gin.Context, locale string, stationID coremodel.StationID, err error) {
	if errors.Is(err, centralserver.ErrBreakerOpen) {
		h.respondWithError(c, http.StatusServiceUnavailable, "central server unavailable", nil)
		return
	}
	rendered := h.catalog.Render(locale, starttx.HandleTransportError(err, starttx.KeyUnexpectedError))
	status := http.StatusBadGateway
	var httpErr *centralserver.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			status = httpErr.StatusCode
		}
	}
	h.logger.Warn("fetch charging station failed",
		zap.String("station_id", string(stationID)),
		zap.Int("status", status),
		zap.Error(err))
	h.respondWithError(c, status, rendered.Text, rendered)
}

// GetRun 查询运行视图
// @Summary 查询运行
// @Description 仅发起人可见，其他操作者返回 404
// @Tags 启动交易
// @Produce json
// @Security BearerAuth
// @Param run_id path string true "运行ID"
// @Success 200 {object} StandardResponse{data=session.View} "成功"
// @Failure 404 {object} StandardResponse "运行不存在或已过期"
// @Router /api/v1/start-runs/{run_id} [get]
func (h *StartHandler) GetRun(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	view, err := h.hub.Get(c.Request.Context(), c.Param("run_id"), actor.ID)
	if err != nil {
		h.handleRunError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "ok", view)
}

// AnswerPrompt 应答当前提示
// @Summary 应答提示
// @Description 仅发起人可以应答
// @Tags 启动交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param run_id path string true "运行ID"
// @Param request body AnswerBody true "应答"
// @Success 200 {object} StandardResponse "成功"
// @Failure 404 {object} StandardResponse "运行不存在或已结束"
// @Failure 409 {object} StandardResponse "提示已变化"
// @Failure 422 {object} StandardResponse "应答无效"
// @Router /api/v1/start-runs/{run_id}/answer [post]
func (h *StartHandler) AnswerPrompt(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	var body AnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), nil)
		return
	}
	runID := c.Param("run_id")
	if err := h.hub.Answer(runID, actor.ID, body.PromptID, console.Answer{Button: body.Button, Users: body.Users}); err != nil {
		h.handleRunError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "ok", nil)
}

// CancelRun 取消运行
// @Summary 取消运行
// @Description 仅发起人可以取消；等待中的提示按用户取消处理，已提交的启动请求不会撤回
// @Tags 启动交易
// @Produce json
// @Security BearerAuth
// @Param run_id path string true "运行ID"
// @Success 200 {object} StandardResponse "成功"
// @Failure 404 {object} StandardResponse "运行不存在或已结束"
// @Router /api/v1/start-runs/{run_id} [delete]
func (h *StartHandler) CancelRun(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	if err := h.hub.Cancel(c.Param("run_id"), actor.ID); err != nil {
		h.handleRunError(c, err)
		return
	}
	h.respond(c, http.StatusOK, "cancelled", nil)
}

func (h *StartHandler) requireActor(c *gin.Context) (*coremodel.UserToken, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		h.respondWithError(c, http.StatusUnauthorized, "actor required", nil)
	}
	return actor, ok
}

func (h *StartHandler) handleRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, console.ErrRunNotFound):
		h.respondWithError(c, http.StatusNotFound, "run not found", nil)
	case errors.Is(err, console.ErrNoPendingPrompt), errors.Is(err, console.ErrPromptMismatch):
		h.respondWithError(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, console.ErrInvalidAnswer):
		h.respondWithError(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		h.logger.Error("start run operation failed", zap.String("run_id", c.Param("run_id")), zap.Error(err))
		h.respondWithError(c, http.StatusInternalServerError, "internal error", nil)
	}
}

// ListAttempts 启动记录
// @Summary 启动记录
// @Tags 启动交易
// @Produce json
// @Security BearerAuth
// @Param station_id query string false "充电桩ID"
// @Description 非管理员只能查询本人发起的记录，actor_id 被忽略
// @Param actor_id query string false "发起人（仅管理员）"
// @Param limit query int false "条数（默认50，最大500）"
// @Param offset query int false "偏移"
// @Success 200 {object} StandardResponse{data=[]models.StartAttempt} "成功"
// @Failure 503 {object} StandardResponse "未启用数据库"
// @Router /api/v1/start-attempts [get]
func (h *StartHandler) ListAttempts(c *gin.Context) {
	if h.audit == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, "audit store disabled", nil)
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	filter := storage.AttemptFilter{
		StationID: c.Query("station_id"),
		ActorID:   c.Query("actor_id"),
		Limit:     limit,
		Offset:    offset,
	}
	if !actor.IsAdmin() {
		filter.ActorID = actor.ID
	}
	list, err := h.audit.ListAttempts(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list start attempts failed", zap.Error(err))
		h.respondWithError(c, http.StatusInternalServerError, "list attempts failed", nil)
		return
	}
	if list == nil {
		list = []models.StartAttempt{}
	}
	h.respond(c, http.StatusOK, "ok", list)
}

// GetAttempt 单条启动记录
// @Summary 启动记录详情
// @Tags 启动交易
// @Produce json
// @Security BearerAuth
// @Description 非管理员只能查询本人发起的记录
// @Param run_id path string true "运行ID"
// @Success 200 {object} StandardResponse{data=models.StartAttempt} "成功"
// @Failure 404 {object} StandardResponse "不存在"
// @Router /api/v1/start-attempts/{run_id} [get]
func (h *StartHandler) GetAttempt(c *gin.Context) {
	if h.audit == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, "audit store disabled", nil)
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	a, err := h.audit.GetAttempt(c.Request.Context(), c.Param("run_id"))
	if err == nil && !actor.IsAdmin() && a.ActorID != actor.ID {
		err = storage.ErrNotFound
	}
	if errors.Is(err, storage.ErrNotFound) {
		h.respondWithError(c, http.StatusNotFound, "attempt not found", nil)
		return
	}
	if err != nil {
		h.logger.Error("get start attempt failed", zap.String("run_id", c.Param("run_id")), zap.Error(err))
		h.respondWithError(c, http.StatusInternalServerError, "get attempt failed", nil)
		return
	}
	h.respond(c, http.StatusOK, "ok", a)
}

// ConnectorStatuses 枪口状态字典
// @Summary 枪口状态字典
// @Tags 启动交易
// @Produce json
// @Success 200 {object} StandardResponse{data=[]coremodel.ConnectorStatusInfo} "成功"
// @Router /api/v1/connector-statuses [get]
func (h *StartHandler) ConnectorStatuses(c *gin.Context) {
	h.respond(c, http.StatusOK, "ok", coremodel.AllConnectorStatusInfo())
}
