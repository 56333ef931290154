package session

import (
	"context"
	"errors"
	"time"

	"github.com/taoyao-code/charge-console/internal/coremodel"
	"github.com/taoyao-code/charge-console/internal/messages"
	"github.com/taoyao-code/charge-console/internal/starttx"
)

// ErrNotFound 运行视图不存在或已过期
var ErrNotFound = errors.New("start run view not found")

// Store 运行视图存储，支持内存和 Redis 两种实现
type Store interface {
	// Save 写入/覆盖视图并刷新过期时间
	Save(ctx context.Context, v *View) error

	// Get 读取视图，不存在返回 ErrNotFound
	Get(ctx context.Context, runID string) (*View, error)

	// Delete 删除视图，不存在不报错
	Delete(ctx context.Context, runID string) error
}

// PromptKind 待应答提示类型
type PromptKind string

const (
	PromptInform     PromptKind = "inform"
	PromptChoice     PromptKind = "choice"
	PromptSelectUser PromptKind = "select_user"
	PromptConfirm    PromptKind = "confirm"
)

// Prompt 当前等待应答的提示
type Prompt struct {
	ID           string             `json:"id"`
	Kind         PromptKind         `json:"kind"`
	Title        messages.Rendered  `json:"title"`
	Message      *messages.Rendered `json:"message,omitempty"`
	Buttons      []string           `json:"buttons,omitempty"`
	SingleSelect bool               `json:"single_select,omitempty"`
}

// Notification 已展示的成功/错误通知
type Notification struct {
	Level   string             `json:"level"` // success|error|inform
	Message messages.Rendered  `json:"message"`
	Title   *messages.Rendered `json:"title,omitempty"`
	At      time.Time          `json:"at"`
}

// View 运行视图：对外可见的运行快照
type View struct {
	RunID         string         `json:"run_id"`
	StationID     string         `json:"station_id"`
	ConnectorID   int32          `json:"connector_id"`
	ActorID       string         `json:"actor_id"`
	State         starttx.State  `json:"state"`
	Reason        starttx.Reason `json:"reason,omitempty"`
	Busy          bool           `json:"busy"`
	Prompt        *Prompt        `json:"prompt,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
	TargetUserID  string         `json:"target_user_id,omitempty"`
	TagID         string         `json:"tag_id,omitempty"`
	// Station 接受后刷新得到的最新快照
	Station   *coremodel.ChargingStation `json:"station,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// Clone 深拷贝，存储实现不共享调用方的切片
func (v *View) Clone() *View {
	if v == nil {
		return nil
	}
	out := *v
	if v.Prompt != nil {
		p := *v.Prompt
		p.Buttons = append([]string(nil), v.Prompt.Buttons...)
		out.Prompt = &p
	}
	out.Notifications = append([]Notification(nil), v.Notifications...)
	if v.Station != nil {
		st := *v.Station
		st.Connectors = append([]coremodel.Connector(nil), v.Station.Connectors...)
		out.Station = &st
	}
	return &out
}
