package coremodel

import "strings"

// StationID 充电桩标识（chargeBoxID）
type StationID string

// ConnectorID 枪口编号，1-based
type ConnectorID int32

// ChargingStation 充电桩快照
// Inactive 表示通信/健康状态异常，与枪口状态无关
type ChargingStation struct {
	ID         StationID   `json:"id"`
	Inactive   bool        `json:"inactive"`
	Connectors []Connector `json:"connectors,omitempty"`
}

// ConnectorByID 按编号查找枪口
func (s *ChargingStation) ConnectorByID(id ConnectorID) (*Connector, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Connectors {
		if s.Connectors[i].ConnectorID == id {
			return &s.Connectors[i], true
		}
	}
	return nil, false
}

// Owns 判断枪口是否属于该充电桩
// 未携带枪口列表的快照视为匹配（调用方只传了单枪快照）
func (s *ChargingStation) Owns(id ConnectorID) bool {
	if s == nil {
		return false
	}
	if len(s.Connectors) == 0 {
		return true
	}
	_, ok := s.ConnectorByID(id)
	return ok
}

// Connector 枪口快照
type Connector struct {
	ConnectorID          ConnectorID     `json:"connectorId"`
	Status               ConnectorStatus `json:"status"`
	CurrentTransactionID *int64          `json:"currentTransactionID,omitempty"`
}

// HasTransaction 枪口上是否已有进行中的交易（0 视为无）
func (c *Connector) HasTransaction() bool {
	return c != nil && c.CurrentTransactionID != nil && *c.CurrentTransactionID != 0
}

// Tag 授权卡/凭证
type Tag struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// User 被选择的目标用户
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
	Email     string `json:"email,omitempty"`
	Tags      []Tag  `json:"tags,omitempty"`
}

// FirstActiveTag 返回第一张 active 的卡（按列表顺序，非最新）
func (u *User) FirstActiveTag() (string, bool) {
	if u == nil {
		return "", false
	}
	for _, t := range u.Tags {
		if t.Active {
			return t.ID, true
		}
	}
	return "", false
}

// 角色编码
const (
	RoleSuperAdmin = "S"
	RoleAdmin      = "A"
	RoleBasic      = "B"
	RoleDemo       = "D"
)

// UserToken 当前登录用户（来自访问令牌）
type UserToken struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	FirstName string   `json:"firstName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Role      string   `json:"role"`
	TagIDs    []string `json:"tagIDs,omitempty"`
}

// IsAdmin 是否具备管理员权限
func (t *UserToken) IsAdmin() bool {
	if t == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(t.Role)) {
	case "a", "admin", "s", "superadmin":
		return true
	}
	return false
}

// FirstTagID 返回登录用户卡列表的第一项
func (t *UserToken) FirstTagID() (string, bool) {
	if t == nil || len(t.TagIDs) == 0 {
		return "", false
	}
	return t.TagIDs[0], true
}

// ActionStatus 远程命令应答状态（OCPP general response）
type ActionStatus string

const (
	ActionStatusAccepted ActionStatus = "Accepted"
	ActionStatusRejected ActionStatus = "Rejected"
)

// ActionResponse 远程命令应答
type ActionResponse struct {
	Status ActionStatus `json:"status"`
}

// Accepted 应答是否为接受
func (r ActionResponse) Accepted() bool {
	return strings.EqualFold(string(r.Status), string(ActionStatusAccepted))
}
