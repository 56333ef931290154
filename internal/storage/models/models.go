package models

import (
	"time"
)

// 注意：
// - 保持与 internal/storage/migrations 下的 SQL 对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// StartAttempt 映射 start_attempts 表：每次启动交易运行的终态记录
type StartAttempt struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	// 运行 ID（uuid）
	RunID       string `gorm:"column:run_id;type:text;not null;uniqueIndex" json:"run_id"`
	StationID   string `gorm:"column:station_id;type:text;not null;index" json:"station_id"`
	ConnectorID int32  `gorm:"column:connector_id;not null" json:"connector_id"`
	// 发起人（登录用户）与目标用户，本人发起时 TargetUserID 为空
	ActorID      string  `gorm:"column:actor_id;type:text;not null" json:"actor_id"`
	TargetUserID *string `gorm:"column:target_user_id;type:text" json:"target_user_id,omitempty"`
	TargetName   string  `gorm:"column:target_name;type:text" json:"target_name"`
	TagID        *string `gorm:"column:tag_id;type:text" json:"tag_id,omitempty"`
	State        string  `gorm:"column:state;type:text;not null" json:"state"`
	Reason       string  `gorm:"column:reason;type:text;not null" json:"reason"`
	Submitted    bool    `gorm:"column:submitted;not null" json:"submitted"`
	// 传输失败时的错误描述
	ErrorText  *string   `gorm:"column:error_text;type:text" json:"error_text,omitempty"`
	StartedAt  time.Time `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt time.Time `gorm:"column:finished_at;not null" json:"finished_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StartAttempt) TableName() string { return "start_attempts" }
