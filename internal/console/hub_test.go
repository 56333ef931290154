package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/charge-console/internal/coremodel"
	"github.com/taoyao-code/charge-console/internal/metrics"
	"github.com/taoyao-code/charge-console/internal/session"
	"github.com/taoyao-code/charge-console/internal/starttx"
	"github.com/taoyao-code/charge-console/internal/storage"
	"github.com/taoyao-code/charge-console/internal/storage/models"
)

type fakeGateway struct {
	mu     sync.Mutex
	status coremodel.ActionStatus
	tags   []string
}

func (g *fakeGateway) StartTransaction(_ context.Context, _ coremodel.StationID, _ coremodel.ConnectorID, tagID string) (coremodel.ActionResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tags = append(g.tags, tagID)
	return coremodel.ActionResponse{Status: g.status}, nil
}

func (g *fakeGateway) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.tags...)
}

type fakeAudit struct {
	mu       sync.Mutex
	attempts []models.StartAttempt
}

func (f *fakeAudit) RecordAttempt(_ context.Context, a *models.StartAttempt) error {
	f.mu.Lock()
	f.attempts = append(f.attempts, *a)
	f.mu.Unlock()
	return nil
}

func (f *fakeAudit) GetAttempt(context.Context, string) (*models.StartAttempt, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeAudit) ListAttempts(context.Context, storage.AttemptFilter) ([]models.StartAttempt, error) {
	return nil, nil
}

func (f *fakeAudit) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

type fakeStations struct{}

func (fakeStations) GetChargingStation(_ context.Context, id coremodel.StationID) (*coremodel.ChargingStation, error) {
	return &coremodel.ChargingStation{ID: id, Connectors: []coremodel.Connector{{ConnectorID: 1, Status: coremodel.ConnectorStatusCharging}}}, nil
}

type harness struct {
	hub     *Hub
	gateway *fakeGateway
	audit   *fakeAudit
	metrics *metrics.AppMetrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gw := &fakeGateway{status: coremodel.ActionStatusAccepted}
	audit := &fakeAudit{}
	m := metrics.NewAppMetrics(metrics.NewRegistry())
	ctrl := starttx.NewController(nil, gw)
	hub := NewHub(ctrl, session.NewMemoryStore(time.Minute), nil,
		WithAudit(audit), WithStationSource(fakeStations{}), WithMetrics(m))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})
	return &harness{hub: hub, gateway: gw, audit: audit, metrics: m}
}

const owner = "u1"

func startRequest(role string, tagIDs ...string) StartRequest {
	return StartRequest{
		Station:   &coremodel.ChargingStation{ID: "CB-1"},
		Connector: &coremodel.Connector{ConnectorID: 1, Status: coremodel.ConnectorStatusAvailable},
		Actor:     &coremodel.UserToken{ID: owner, Name: "Doe", FirstName: "John", Role: role, TagIDs: tagIDs},
		Locale:    "en",
	}
}

func waitPrompt(t *testing.T, h *Hub, runID string, kind session.PromptKind) *session.Prompt {
	t.Helper()
	var p *session.Prompt
	require.Eventually(t, func() bool {
		v, err := h.Get(context.Background(), runID, owner)
		if err != nil || v.Prompt == nil || v.Prompt.Kind != kind {
			return false
		}
		p = v.Prompt
		return true
	}, 2*time.Second, 5*time.Millisecond, "waiting for %s prompt", kind)
	return p
}

func waitState(t *testing.T, h *Hub, runID string, st starttx.State) *session.View {
	t.Helper()
	var view *session.View
	require.Eventually(t, func() bool {
		v, err := h.Get(context.Background(), runID, owner)
		if err != nil || v.State != st {
			return false
		}
		view = v
		return true
	}, 2*time.Second, 5*time.Millisecond, "waiting for state %s", st)
	return view
}

func TestHub_ForMyselfAccepted(t *testing.T) {
	h := newHarness(t)
	id, err := h.hub.Start(context.Background(), startRequest(coremodel.RoleBasic, "TAG-1"))
	require.NoError(t, err)

	p := waitPrompt(t, h.hub, id, session.PromptConfirm)
	require.NotNil(t, p.Message)
	assert.Contains(t, p.Message.Text, "Doe, John")
	assert.Contains(t, p.Message.Text, "CB-1")
	assert.Equal(t, []string{"YES", "NO"}, p.Buttons)

	require.NoError(t, h.hub.Answer(id, owner, p.ID, Answer{Button: "YES"}))
	v := waitState(t, h.hub, id, starttx.StateCompleted)

	assert.Equal(t, starttx.ReasonAccepted, v.Reason)
	assert.False(t, v.Busy)
	require.NotEmpty(t, v.Notifications)
	last := v.Notifications[len(v.Notifications)-1]
	assert.Equal(t, "success", last.Level)
	assert.True(t, strings.Contains(last.Message.Text, "CB-1"))
	assert.Equal(t, []string{"TAG-1"}, h.gateway.calls())

	require.Eventually(t, func() bool { return h.audit.count() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		v, err := h.hub.Get(context.Background(), id, owner)
		return err == nil && v.Station != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.hub.Active())
}

func TestHub_AdminSelectsUser(t *testing.T) {
	h := newHarness(t)
	id, err := h.hub.Start(context.Background(), startRequest(coremodel.RoleAdmin, "ADMIN-TAG"))
	require.NoError(t, err)

	choice := waitPrompt(t, h.hub, id, session.PromptChoice)
	assert.Equal(t, []string{"FOR_MYSELF", "SELECT_USER"}, choice.Buttons)
	require.NoError(t, h.hub.Answer(id, owner, choice.ID, Answer{Button: "SELECT_USER"}))

	sel := waitPrompt(t, h.hub, id, session.PromptSelectUser)
	assert.True(t, sel.SingleSelect)
	require.NoError(t, h.hub.Answer(id, owner, sel.ID, Answer{Users: []coremodel.User{{
		ID: "u2", Name: "Roe", Tags: []coremodel.Tag{{ID: "OLD"}, {ID: "B", Active: true}},
	}}}))

	conf := waitPrompt(t, h.hub, id, session.PromptConfirm)
	require.NoError(t, h.hub.Answer(id, owner, conf.ID, Answer{Button: "YES"}))

	v := waitState(t, h.hub, id, starttx.StateCompleted)
	assert.Equal(t, "u2", v.TargetUserID)
	assert.Equal(t, "B", v.TagID)
	assert.Equal(t, []string{"B"}, h.gateway.calls())
}

func TestHub_AnswerValidation(t *testing.T) {
	h := newHarness(t)
	id, err := h.hub.Start(context.Background(), startRequest(coremodel.RoleBasic, "T"))
	require.NoError(t, err)
	p := waitPrompt(t, h.hub, id, session.PromptConfirm)

	assert.ErrorIs(t, h.hub.Answer("nope", owner, p.ID, Answer{Button: "YES"}), ErrRunNotFound)
	assert.ErrorIs(t, h.hub.Answer(id, owner, "other", Answer{Button: "YES"}), ErrPromptMismatch)
	assert.ErrorIs(t, h.hub.Answer(id, owner, p.ID, Answer{Button: "MAYBE"}), ErrInvalidAnswer)

	require.NoError(t, h.hub.Answer(id, owner, p.ID, Answer{Button: "NO"}))
	v := waitState(t, h.hub, id, starttx.StateAborted)
	assert.Equal(t, starttx.ReasonCancelled, v.Reason)
	assert.Empty(t, h.gateway.calls())

	err = h.hub.Answer(id, owner, p.ID, Answer{Button: "YES"})
	assert.True(t, errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrNoPendingPrompt))
}

func TestHub_CancelWhileWaiting(t *testing.T) {
	h := newHarness(t)
	id, err := h.hub.Start(context.Background(), startRequest(coremodel.RoleAdmin, "T"))
	require.NoError(t, err)
	waitPrompt(t, h.hub, id, session.PromptChoice)

	require.NoError(t, h.hub.Cancel(id, owner))
	v := waitState(t, h.hub, id, starttx.StateAborted)
	assert.Equal(t, starttx.ReasonCancelled, v.Reason)
	assert.Nil(t, v.Prompt)
	assert.Empty(t, h.gateway.calls())
	assert.ErrorIs(t, h.hub.Cancel("missing", owner), ErrRunNotFound)
}

func TestHub_OnlyOwnerDrivesRun(t *testing.T) {
	h := newHarness(t)
	id, err := h.hub.Start(context.Background(), startRequest(coremodel.RoleAdmin, "ADMIN-TAG"))
	require.NoError(t, err)
	choice := waitPrompt(t, h.hub, id, session.PromptChoice)

	_, err = h.hub.Get(context.Background(), id, "mallory")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, h.hub.Answer(id, "mallory", choice.ID, Answer{Button: "SELECT_USER"}), ErrRunNotFound)
	assert.ErrorIs(t, h.hub.Cancel(id, "mallory"), ErrRunNotFound)
	assert.ErrorIs(t, h.hub.Answer(id, "", choice.ID, Answer{Button: "SELECT_USER"}), ErrRunNotFound)

	// 提示仍在等待发起人
	v, err := h.hub.Get(context.Background(), id, owner)
	require.NoError(t, err)
	require.NotNil(t, v.Prompt)
	assert.Equal(t, choice.ID, v.Prompt.ID)

	require.NoError(t, h.hub.Answer(id, owner, choice.ID, Answer{Button: "FOR_MYSELF"}))
	conf := waitPrompt(t, h.hub, id, session.PromptConfirm)
	require.NoError(t, h.hub.Answer(id, owner, conf.ID, Answer{Button: "YES"}))
	waitState(t, h.hub, id, starttx.StateCompleted)
	assert.Equal(t, []string{"ADMIN-TAG"}, h.gateway.calls())

	_, err = h.hub.Get(context.Background(), id, "mallory")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestHub_CallerCancelDoesNotAbortRun(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	id, err := h.hub.Start(ctx, startRequest(coremodel.RoleBasic, "T"))
	require.NoError(t, err)
	cancel()

	p := waitPrompt(t, h.hub, id, session.PromptConfirm)
	require.NoError(t, h.hub.Answer(id, owner, p.ID, Answer{Button: "YES"}))
	waitState(t, h.hub, id, starttx.StateCompleted)
}

func TestHub_PreconditionFailureInforms(t *testing.T) {
	h := newHarness(t)
	req := startRequest(coremodel.RoleBasic, "T")
	req.Station.Inactive = true
	id, err := h.hub.Start(context.Background(), req)
	require.NoError(t, err)

	v := waitState(t, h.hub, id, starttx.StateAborted)
	assert.Equal(t, starttx.ReasonStationInactive, v.Reason)
	require.Len(t, v.Notifications, 1)
	assert.Equal(t, "inform", v.Notifications[0].Level)
	require.NotNil(t, v.Notifications[0].Title)
	assert.Equal(t, starttx.KeyStartErrorTitle, v.Notifications[0].Title.Key)
}

func TestHub_RejectedShowsError(t *testing.T) {
	h := newHarness(t)
	h.gateway.status = coremodel.ActionStatusRejected
	id, err := h.hub.Start(context.Background(), startRequest(coremodel.RoleBasic, "T"))
	require.NoError(t, err)
	p := waitPrompt(t, h.hub, id, session.PromptConfirm)
	require.NoError(t, h.hub.Answer(id, owner, p.ID, Answer{Button: "YES"}))

	v := waitState(t, h.hub, id, starttx.StateFailed)
	assert.Equal(t, starttx.ReasonRejected, v.Reason)
	last := v.Notifications[len(v.Notifications)-1]
	assert.Equal(t, "error", last.Level)
	assert.Equal(t, starttx.CategoryAction, last.Message.Category)
}

func TestHub_ShutdownRejectsNewRuns(t *testing.T) {
	h := newHarness(t)
	id, err := h.hub.Start(context.Background(), startRequest(coremodel.RoleAdmin, "T"))
	require.NoError(t, err)
	waitPrompt(t, h.hub, id, session.PromptChoice)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.hub.Shutdown(ctx))

	v, err := h.hub.Get(context.Background(), id, owner)
	require.NoError(t, err)
	assert.Equal(t, starttx.StateAborted, v.State)

	_, err = h.hub.Start(context.Background(), startRequest(coremodel.RoleBasic, "T"))
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestHub_GetUnknown(t *testing.T) {
	h := newHarness(t)
	_, err := h.hub.Get(context.Background(), "missing", owner)
	assert.ErrorIs(t, err, ErrRunNotFound)
}
