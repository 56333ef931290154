package coremodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnector_HasTransaction(t *testing.T) {
	zero := int64(0)
	running := int64(4711)

	tests := []struct {
		name string
		c    *Connector
		want bool
	}{
		{"nil枪口", nil, false},
		{"无交易", &Connector{}, false},
		{"交易号为0", &Connector{CurrentTransactionID: &zero}, false},
		{"交易进行中", &Connector{CurrentTransactionID: &running}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.HasTransaction())
		})
	}
}

func TestChargingStation_Owns(t *testing.T) {
	st := &ChargingStation{ID: "CB-01", Connectors: []Connector{{ConnectorID: 1}, {ConnectorID: 2}}}
	assert.True(t, st.Owns(2))
	assert.False(t, st.Owns(3))

	// 无枪口列表的快照不做校验
	bare := &ChargingStation{ID: "CB-02"}
	assert.True(t, bare.Owns(9))

	var nilStation *ChargingStation
	assert.False(t, nilStation.Owns(1))
}

func TestUser_FirstActiveTag(t *testing.T) {
	u := &User{Tags: []Tag{{ID: "A", Active: false}, {ID: "B", Active: true}, {ID: "C", Active: true}}}
	id, ok := u.FirstActiveTag()
	assert.True(t, ok)
	assert.Equal(t, "B", id)

	_, ok = (&User{Tags: []Tag{{ID: "A"}}}).FirstActiveTag()
	assert.False(t, ok)
}

func TestUserToken_FirstTagID(t *testing.T) {
	id, ok := (&UserToken{TagIDs: []string{"X", "Y"}}).FirstTagID()
	assert.True(t, ok)
	assert.Equal(t, "X", id)

	_, ok = (&UserToken{}).FirstTagID()
	assert.False(t, ok)
}

func TestUserToken_IsAdmin(t *testing.T) {
	assert.True(t, (&UserToken{Role: RoleAdmin}).IsAdmin())
	assert.True(t, (&UserToken{Role: RoleSuperAdmin}).IsAdmin())
	assert.True(t, (&UserToken{Role: "admin"}).IsAdmin())
	assert.False(t, (&UserToken{Role: RoleBasic}).IsAdmin())
	var nilToken *UserToken
	assert.False(t, nilToken.IsAdmin())
}

func TestParseConnectorStatus(t *testing.T) {
	assert.Equal(t, ConnectorStatusUnavailable, ParseConnectorStatus("unavailable"))
	assert.Equal(t, ConnectorStatusAvailable, ParseConnectorStatus(" Available "))
	assert.Equal(t, ConnectorStatus(""), ParseConnectorStatus("broken"))
	assert.True(t, ConnectorStatus("UNAVAILABLE").IsUnavailable())
	assert.False(t, ConnectorStatusFaulted.IsUnavailable())
	assert.False(t, ConnectorStatusUnavailable.ToInfo().Startable)
	assert.Len(t, AllConnectorStatusInfo(), 9)
}

func TestActionResponse_Accepted(t *testing.T) {
	assert.True(t, ActionResponse{Status: ActionStatusAccepted}.Accepted())
	assert.True(t, ActionResponse{Status: "accepted"}.Accepted())
	assert.False(t, ActionResponse{Status: ActionStatusRejected}.Accepted())
	assert.False(t, ActionResponse{}.Accepted())
}

func TestBuildUserFullName(t *testing.T) {
	assert.Equal(t, "Doe, Jane", BuildUserFullName(&User{Name: "Doe", FirstName: "Jane"}))
	assert.Equal(t, "Doe", BuildUserFullName(&UserToken{Name: "Doe"}))
	assert.Equal(t, "-", BuildUserFullName(&User{FirstName: "Jane"}))
	assert.Equal(t, "-", BuildUserFullName(nil))
	var nilUser *User
	assert.Equal(t, "-", BuildUserFullName(nilUser))
}
