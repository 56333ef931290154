package coremodel

import "strings"

// ConnectorStatus 枪口运行状态（OCPP 1.6 ChargePointStatus）
type ConnectorStatus string

const (
	ConnectorStatusAvailable     ConnectorStatus = "Available"
	ConnectorStatusPreparing     ConnectorStatus = "Preparing"
	ConnectorStatusCharging      ConnectorStatus = "Charging"
	ConnectorStatusSuspendedEVSE ConnectorStatus = "SuspendedEVSE"
	ConnectorStatusSuspendedEV   ConnectorStatus = "SuspendedEV"
	ConnectorStatusFinishing     ConnectorStatus = "Finishing"
	ConnectorStatusReserved      ConnectorStatus = "Reserved"
	ConnectorStatusUnavailable   ConnectorStatus = "Unavailable"
	ConnectorStatusFaulted       ConnectorStatus = "Faulted"
)

var knownConnectorStatuses = []ConnectorStatus{
	ConnectorStatusAvailable,
	ConnectorStatusPreparing,
	ConnectorStatusCharging,
	ConnectorStatusSuspendedEVSE,
	ConnectorStatusSuspendedEV,
	ConnectorStatusFinishing,
	ConnectorStatusReserved,
	ConnectorStatusUnavailable,
	ConnectorStatusFaulted,
}

// ParseConnectorStatus 大小写不敏感解析，未知值返回空状态
func ParseConnectorStatus(s string) ConnectorStatus {
	s = strings.TrimSpace(s)
	for _, st := range knownConnectorStatuses {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return ""
}

// IsUnavailable 枪口是否处于 Unavailable
func (s ConnectorStatus) IsUnavailable() bool {
	return ParseConnectorStatus(string(s)) == ConnectorStatusUnavailable
}

// ConnectorStatusInfo 状态说明（用于 API 响应）
type ConnectorStatusInfo struct {
	Name        string `json:"name"`
	DisplayText string `json:"display_text"`
	Startable   bool   `json:"startable"` // 是否允许发起启动（仅看枪口状态）
}

// ToInfo 获取状态的完整信息
func (s ConnectorStatus) ToInfo() ConnectorStatusInfo {
	st := ParseConnectorStatus(string(s))
	switch st {
	case ConnectorStatusAvailable:
		return ConnectorStatusInfo{Name: string(st), DisplayText: "空闲可用", Startable: true}
	case ConnectorStatusPreparing:
		return ConnectorStatusInfo{Name: string(st), DisplayText: "准备中", Startable: true}
	case ConnectorStatusCharging, ConnectorStatusSuspendedEVSE, ConnectorStatusSuspendedEV:
		return ConnectorStatusInfo{Name: string(st), DisplayText: "使用中", Startable: true}
	case ConnectorStatusFinishing:
		return ConnectorStatusInfo{Name: string(st), DisplayText: "结束中", Startable: true}
	case ConnectorStatusReserved:
		return ConnectorStatusInfo{Name: string(st), DisplayText: "已预约", Startable: true}
	case ConnectorStatusUnavailable:
		return ConnectorStatusInfo{Name: string(st), DisplayText: "不可用", Startable: false}
	case ConnectorStatusFaulted:
		return ConnectorStatusInfo{Name: string(st), DisplayText: "故障", Startable: true}
	default:
		return ConnectorStatusInfo{Name: "unknown", DisplayText: "未知", Startable: true}
	}
}

// AllConnectorStatusInfo 返回所有枪口状态信息列表
func AllConnectorStatusInfo() []ConnectorStatusInfo {
	out := make([]ConnectorStatusInfo, 0, len(knownConnectorStatuses))
	for _, st := range knownConnectorStatuses {
		out = append(out, st.ToInfo())
	}
	return out
}
