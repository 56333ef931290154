package starttx

import (
	"context"

	"github.com/taoyao-code/charge-console/internal/coremodel"
)

// State 工作流状态
type State string

const (
	StateChecking       State = "checking"
	StateActorSelection State = "actor_selection"
	StateUserSelection  State = "user_selection"
	StateTagResolution  State = "tag_resolution"
	StateConfirmation   State = "confirmation"
	StateSubmitting     State = "submitting"

	// 终态
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateAborted   State = "aborted"
)

// Terminal 是否为终态
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateAborted:
		return true
	}
	return false
}

// Reason 终态原因
type Reason string

const (
	ReasonAccepted              Reason = "accepted"
	ReasonRejected              Reason = "rejected"
	ReasonTransportFailure      Reason = "transport_failure"
	ReasonStationInactive       Reason = "station_inactive"
	ReasonConnectorUnavailable  Reason = "connector_unavailable"
	ReasonTransactionInProgress Reason = "transaction_in_progress"
	ReasonMismatchedConnector   Reason = "mismatched_connector"
	ReasonInvalidRequest        Reason = "invalid_request"
	ReasonMissingTag            Reason = "missing_tag"
	ReasonCancelled             Reason = "cancelled"
)

// ButtonID 管理员选择框的按钮
type ButtonID string

const (
	ButtonForMyself  ButtonID = "FOR_MYSELF"
	ButtonSelectUser ButtonID = "SELECT_USER"
)

// ButtonType 确认框的应答
type ButtonType string

const (
	ButtonYes ButtonType = "YES"
	ButtonNo  ButtonType = "NO"
)

// Category 错误通知类别
type Category string

const (
	CategoryAction    Category = "action"    // 远程系统应答拒绝
	CategoryTransport Category = "transport" // 请求未完成/无法解析
)

// Message 待渲染的消息：文案 key + 命名参数，渲染由外部完成
type Message struct {
	Key      string            `json:"key"`
	Params   map[string]string `json:"params,omitempty"`
	Category Category          `json:"category,omitempty"`
	Route    string            `json:"route,omitempty"` // 仅传输错误：建议前端跳转的路由
}

// Notice 阻塞式提示框
type Notice struct {
	Title   Message `json:"title"`
	Message Message `json:"message"`
}

// ChoicePrompt 多按钮选择框
type ChoicePrompt struct {
	Title   Message    `json:"title"`
	Message Message    `json:"message"`
	Buttons []ButtonID `json:"buttons"`
}

// SelectPrompt 用户选择框（候选列表由外部提供）
type SelectPrompt struct {
	Title          Message `json:"title"`
	ValidateButton Message `json:"validate_button"`
	Multiple       bool    `json:"multiple"`
}

// ConfirmPrompt 是/否确认框
type ConfirmPrompt struct {
	Title   Message `json:"title"`
	Message Message `json:"message"`
}

// Authorizer 判断操作者能否代他人发起
type Authorizer interface {
	HasElevatedPrivilege(actor *coremodel.UserToken) bool
}

// AuthorizerFunc 函数适配
type AuthorizerFunc func(actor *coremodel.UserToken) bool

func (f AuthorizerFunc) HasElevatedPrivilege(actor *coremodel.UserToken) bool { return f(actor) }

// RoleAuthorizer 按令牌角色判断（管理员/超级管理员）
var RoleAuthorizer = AuthorizerFunc(func(actor *coremodel.UserToken) bool { return actor.IsAdmin() })

// Surface 选择/确认界面。返回 error（如 ctx 取消）一律视为用户取消。
type Surface interface {
	// Inform 展示提示框，不等待用户关闭
	Inform(ctx context.Context, n Notice)
	Choose(ctx context.Context, p ChoicePrompt) (ButtonID, error)
	// SelectUser 返回空列表表示关闭未选择
	SelectUser(ctx context.Context, p SelectPrompt) ([]coremodel.User, error)
	Confirm(ctx context.Context, p ConfirmPrompt) (ButtonType, error)
}

// Notifier 成功/错误通知
type Notifier interface {
	ShowSuccess(ctx context.Context, msg Message)
	ShowError(ctx context.Context, msg Message)
}

// Gateway 远程启动交易；返回 error 即传输失败
type Gateway interface {
	StartTransaction(ctx context.Context, stationID coremodel.StationID, connectorID coremodel.ConnectorID, tagID string) (coremodel.ActionResponse, error)
}

// Busy 忙碌指示，Show/Hide 成对调用
type Busy interface {
	Show()
	Hide()
}

// RefreshFunc 接受后重新同步设备状态，不等待其完成，也不观察其错误
type RefreshFunc func(ctx context.Context) error

// Observer 终态观察者（指标）
type Observer interface {
	Record(state State, reason Reason)
}

// ObserverFunc 函数适配
type ObserverFunc func(state State, reason Reason)

func (f ObserverFunc) Record(state State, reason Reason) {
	if f != nil {
		f(state, reason)
	}
}

// Env 单次运行的界面环境
type Env struct {
	Surface  Surface
	Notifier Notifier
	Busy     Busy // 可空
}

// Request 单次运行的入参快照
type Request struct {
	RunID     string // 为空时自动生成
	Station   *coremodel.ChargingStation
	Connector *coremodel.Connector
	Actor     *coremodel.UserToken // 当前登录用户，显式传入
	Refresh   RefreshFunc          // 可空
}

// Result 运行终态
type Result struct {
	RunID        string                `json:"run_id"`
	State        State                 `json:"state"`
	Reason       Reason                `json:"reason"`
	StationID    coremodel.StationID   `json:"station_id"`
	ConnectorID  coremodel.ConnectorID `json:"connector_id"`
	ActorID      string                `json:"actor_id,omitempty"`
	TargetUserID string                `json:"target_user_id,omitempty"` // 仅代他人发起时有值
	TargetName   string                `json:"target_name,omitempty"`
	TagID        string                `json:"tag_id,omitempty"`
	Submitted    bool                  `json:"submitted"`
	Err          error                 `json:"-"`
}
