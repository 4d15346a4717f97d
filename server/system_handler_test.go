package server

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"evsim/internal"
	"evsim/ocpp/core"
	"evsim/ocpp/smartcharging"
	"evsim/types"
)

// testLogger keeps handler tests quiet.
type testLogger struct{}

func (l *testLogger) FeatureEvent(feature, id, text string) {}
func (l *testLogger) RawDataEvent(direction, id, data string) {}
func (l *testLogger) Debug(text string)                     {}
func (l *testLogger) Warn(text string)                      {}
func (l *testLogger) Error(text string, err error)          {}

type recordingEventHandler struct {
	mux     sync.Mutex
	started []*internal.EventMessage
	stopped []*internal.EventMessage
}

func (h *recordingEventHandler) OnTransactionStart(event *internal.EventMessage) {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.started = append(h.started, event)
}

func (h *recordingEventHandler) OnTransactionStop(event *internal.EventMessage) {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.stopped = append(h.stopped, event)
}

func newTestHandler() *SystemHandler {
	h := NewSystemHandler(30)
	h.SetLogger(&testLogger{})
	return h
}

func startRequest() *core.StartTransactionRequest {
	return &core.StartTransactionRequest{
		ConnectorId: 1,
		IdTag:       "TEST",
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	}
}

func TestBootNotificationAccepted(t *testing.T) {
	h := newTestHandler()
	response := h.OnBootNotification("CP_1", &core.BootNotificationRequest{
		ChargePointVendor: "RalphCo",
		ChargePointModel:  "RalphModel1",
	})
	require.Equal(t, core.RegistrationStatusAccepted, response.Status)
	require.Equal(t, 30, response.Interval)
	require.NotNil(t, response.CurrentTime)

	dump := h.DumpState()
	require.Len(t, dump.Sessions, 1)
	require.True(t, dump.Sessions[0].BootAccepted)
}

func TestTransactionIdsStrictlyIncreasing(t *testing.T) {
	h := newTestHandler()
	first := h.OnStartTransaction("CP_1", startRequest())
	second := h.OnStartTransaction("CP_2", startRequest())
	third := h.OnStartTransaction("CP_1", startRequest())
	require.Equal(t, 1, first.TransactionId)
	require.Equal(t, 2, second.TransactionId)
	require.Equal(t, 3, third.TransactionId)
}

func TestTransactionIdsUniqueUnderConcurrency(t *testing.T) {
	h := newTestHandler()
	const workers = 20
	const perWorker = 10

	ids := make(chan int, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			chargePointId := "CP_" + string(rune('A'+w%26))
			for i := 0; i < perWorker; i++ {
				response := h.OnStartTransaction(chargePointId, startRequest())
				ids <- response.TransactionId
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		require.False(t, seen[id], "transaction id %d allocated twice", id)
		seen[id] = true
	}
	require.Len(t, seen, workers*perWorker)
}

func TestStopTransaction(t *testing.T) {
	h := newTestHandler()
	events := &recordingEventHandler{}
	h.SetEventHandler(events)

	start := h.OnStartTransaction("CP_1", startRequest())
	response := h.OnStopTransaction("CP_1", &core.StopTransactionRequest{
		TransactionId: start.TransactionId,
		MeterStop:     500,
		Timestamp:     types.NewDateTime(time.Now()),
		IdTag:         "TEST",
		Reason:        "Local",
	})
	require.Equal(t, types.AuthorizationStatusAccepted, response.IdTagInfo.Status)

	dump := h.DumpState()
	require.Len(t, dump.Sessions, 1)
	session := dump.Sessions[0]
	require.Nil(t, session.ActiveTransactionId)
	require.Equal(t, 1, session.Transactions)
	require.NotNil(t, session.LastMeterWh)
	require.Equal(t, 500, *session.LastMeterWh)

	require.Len(t, events.started, 1)
	require.Len(t, events.stopped, 1)
	require.Equal(t, 500, events.stopped[0].MeterWh)
}

func TestStopUnknownTransactionStillAccepted(t *testing.T) {
	h := newTestHandler()
	response := h.OnStopTransaction("CP_1", &core.StopTransactionRequest{
		TransactionId: 99,
		MeterStop:     0,
		Timestamp:     types.NewDateTime(time.Now()),
	})
	require.Equal(t, types.AuthorizationStatusAccepted, response.IdTagInfo.Status)
	require.Equal(t, 1, h.DumpState().Sessions[0].Transactions)
}

func TestStatusNotificationIdempotent(t *testing.T) {
	h := newTestHandler()
	request := &core.StatusNotificationRequest{
		ConnectorId: 0,
		Status:      core.ChargePointStatusAvailable,
		ErrorCode:   core.NoError,
	}
	h.OnStatusNotification("CP_1", request)
	h.OnStatusNotification("CP_1", request)

	dump := h.DumpState()
	require.Len(t, dump.Sessions, 1)
	require.Equal(t, "Available", dump.Sessions[0].Status)
	require.NotNil(t, dump.Sessions[0].ConnectorId)
	require.Equal(t, 0, *dump.Sessions[0].ConnectorId)
}

func TestMeterValuesUpdateRegister(t *testing.T) {
	h := newTestHandler()
	h.OnMeterValues("CP_1", &core.MeterValuesRequest{ConnectorId: 1, EnergyWh: 100})
	h.OnMeterValues("CP_1", &core.MeterValuesRequest{ConnectorId: 1, EnergyWh: 200})

	dump := h.DumpState()
	require.NotNil(t, dump.Sessions[0].LastMeterWh)
	require.Equal(t, 200, *dump.Sessions[0].LastMeterWh)
}

func setProfileRequest(profileId, limitW int) *smartcharging.SetChargingProfileRequest {
	return &smartcharging.SetChargingProfileRequest{
		ConnectorId: 1,
		LimitW:      limitW,
		ChargingProfile: &types.ChargingProfile{
			ChargingProfileId:      profileId,
			StackLevel:             1,
			ChargingProfilePurpose: types.ChargingProfilePurposeTxProfile,
			ChargingProfileKind:    types.ChargingProfileKindAbsolute,
			ChargingSchedule: &types.ChargingSchedule{
				ChargingRateUnit: types.ChargingRateUnitWatts,
				ChargingSchedulePeriod: []types.ChargingSchedulePeriod{
					{StartPeriod: 0, Limit: float64(limitW)},
				},
			},
		},
	}
}

func TestChargingProfileLifecycle(t *testing.T) {
	h := newTestHandler()

	response := h.OnSetChargingProfile("CP_1", setProfileRequest(1, 7000))
	require.Equal(t, smartcharging.ChargingProfileStatusAccepted, response.Status)
	h.OnSetChargingProfile("CP_1", setProfileRequest(2, 3500))

	dump := h.DumpState()
	require.Len(t, dump.Sessions[0].ChargingProfiles, 2)
	require.Equal(t, 7000, dump.Sessions[0].ChargingProfiles[0].LimitW)
	require.Equal(t, "TxProfile", dump.Sessions[0].ChargingProfiles[0].Purpose)

	profileId := 1
	cleared := h.OnClearChargingProfile("CP_1", &smartcharging.ClearChargingProfileRequest{ChargingProfileId: &profileId})
	require.Equal(t, smartcharging.ClearChargingProfileStatusAccepted, cleared.Status)
	require.Equal(t, []int{1}, cleared.ClearedIds)
	require.Len(t, h.DumpState().Sessions[0].ChargingProfiles, 1)
}

func TestClearAllChargingProfiles(t *testing.T) {
	h := newTestHandler()
	h.OnSetChargingProfile("CP_1", setProfileRequest(3, 7000))
	h.OnSetChargingProfile("CP_1", setProfileRequest(1, 7000))
	h.OnSetChargingProfile("CP_1", setProfileRequest(2, 7000))

	cleared := h.OnClearChargingProfile("CP_1", &smartcharging.ClearChargingProfileRequest{})
	require.Equal(t, smartcharging.ClearChargingProfileStatusAccepted, cleared.Status)
	require.Equal(t, []int{1, 2, 3}, cleared.ClearedIds)
	require.Empty(t, h.DumpState().Sessions[0].ChargingProfiles)
}

func TestClearWithNothingInstalled(t *testing.T) {
	h := newTestHandler()
	cleared := h.OnClearChargingProfile("CP_1", &smartcharging.ClearChargingProfileRequest{})
	require.Equal(t, smartcharging.ClearChargingProfileStatusAccepted, cleared.Status)
	require.Empty(t, cleared.ClearedIds)

	profileId := 9
	cleared = h.OnClearChargingProfile("CP_1", &smartcharging.ClearChargingProfileRequest{ChargingProfileId: &profileId})
	require.Equal(t, smartcharging.ClearChargingProfileStatusAccepted, cleared.Status)
	require.Empty(t, cleared.ClearedIds)
}

func TestSessionSurvivesReconnect(t *testing.T) {
	h := newTestHandler()
	h.OnConnect("CP_1")
	h.OnStartTransaction("CP_1", startRequest())
	h.OnDisconnect("CP_1")
	h.OnConnect("CP_1")

	dump := h.DumpState()
	require.Len(t, dump.Sessions, 1)
	session := dump.Sessions[0]
	require.True(t, session.Connected)
	require.NotNil(t, session.ActiveTransactionId)
	require.Equal(t, 1, session.Transactions)
}

func TestHeartbeatUpdatesTimestamp(t *testing.T) {
	h := newTestHandler()
	response := h.OnHeartbeat("CP_1", &core.HeartbeatRequest{})
	require.NotNil(t, response.CurrentTime)
	require.NotEmpty(t, h.DumpState().Sessions[0].LastHeartbeatAt)
}
