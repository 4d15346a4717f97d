package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"evsim/internal"
	"evsim/internal/config"
	"evsim/internal/tracing"
	"evsim/ocpp/core"
	"evsim/ocpp/smartcharging"
	"evsim/types"
)

type Status string

const (
	StatusBooting            Status = "BOOTING"
	StatusAvailable          Status = "AVAILABLE"
	StatusTransactionActive  Status = "TRANSACTION_ACTIVE"
	StatusTransactionClosing Status = "TRANSACTION_CLOSING"
	StatusDone               Status = "DONE"
	StatusFailed             Status = "FAILED"
)

const (
	chargePointVendor = "RalphCo"
	chargePointModel  = "RalphModel1"
	firmwareVersion   = "0.1.0"
	meterType         = "RalphMeter"
	idTag             = "TEST"
	connectorId       = 1
)

// ChargePoint drives one simulated charging session over a single shared
// connection. Every send+receive pair runs under the connection guard, so a
// response can never be consumed by the wrong waiter.
type ChargePoint struct {
	Id               string
	Url              string
	HeartbeatCount   int
	FallbackInterval time.Duration
	MeterPeriod      time.Duration
	MeterStep        int
	SessionWindow    time.Duration
	ProfileId        int
	LimitW           int

	logger internal.LogHandler
	conn   *websocket.Conn
	mux    sync.Mutex
	failed atomic.Bool

	status        Status
	transactionId int
	energyWh      int
}

func NewChargePoint(conf *config.Config, logger internal.LogHandler) *ChargePoint {
	return &ChargePoint{
		Id:               conf.Client.ChargePointId,
		Url:              fmt.Sprintf("ws://%s:%s/ws/%s", conf.Client.ServerHost, conf.Client.ServerPort, conf.Client.ChargePointId),
		HeartbeatCount:   conf.Client.HeartbeatCount,
		FallbackInterval: time.Duration(conf.Client.FallbackInterval) * time.Second,
		MeterPeriod:      time.Duration(conf.Client.MeterPeriod) * time.Second,
		MeterStep:        conf.Client.MeterStep,
		SessionWindow:    time.Duration(conf.Client.SessionWindow) * time.Second,
		ProfileId:        conf.Client.ProfileId,
		LimitW:           conf.Client.LimitW,
		logger:           logger,
		status:           StatusBooting,
	}
}

func (cp *ChargePoint) Status() Status {
	return cp.status
}

// EnergyWh final cumulative meter reading; stable once Run has returned.
func (cp *ChargePoint) EnergyWh() int {
	return cp.energyWh
}

func (cp *ChargePoint) setStatus(next Status) {
	if cp.status != next {
		cp.logger.Debug(fmt.Sprintf("state transition: %s -> %s", cp.status, next))
		cp.status = next
	}
}

func (cp *ChargePoint) fail(text string, err error) error {
	cp.failed.Store(true)
	cp.setStatus(StatusFailed)
	if err != nil {
		cp.logger.Error(text, err)
		return fmt.Errorf("%s: %w", text, err)
	}
	cp.logger.Warn(text)
	return fmt.Errorf("%s", text)
}

// Run performs the whole session: boot, status, start transaction, install
// charging profile, heartbeat and metering in parallel, clear profile, stop
// transaction. A non-nil error means the orchestration failed; partial
// progress is not rolled back.
func (cp *ChargePoint) Run(ctx context.Context) error {
	cp.setStatus(StatusBooting)

	header := http.Header{}
	header.Add("Sec-WebSocket-Protocol", types.SubProtocol16)
	tracing.Inject(ctx, header)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cp.Url, header)
	if err != nil {
		return cp.fail(fmt.Sprintf("could not connect to server at %s", cp.Url), err)
	}
	cp.conn = conn
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			cp.logger.Warn(fmt.Sprintf("error on socket close: %s", closeErr))
		}
	}()

	interval, err := cp.boot()
	if err != nil {
		return err
	}
	cp.setStatus(StatusAvailable)

	if err = cp.notifyAvailable(); err != nil {
		return err
	}
	if err = cp.startTransaction(); err != nil {
		return err
	}
	cp.setStatus(StatusTransactionActive)

	if err = cp.setChargingProfile(); err != nil {
		return err
	}

	heartbeatCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		cp.heartbeatLoop(heartbeatCtx, interval)
	}()

	meterStop := make(chan struct{})
	meterDone := make(chan struct{})
	go func() {
		defer close(meterDone)
		cp.meterLoop(meterStop)
	}()

	// observation window: metering is stopped cooperatively and always
	// finishes its in-flight exchange
	select {
	case <-time.After(cp.SessionWindow):
	case <-ctx.Done():
	}
	close(meterStop)
	<-meterDone

	if cp.failed.Load() {
		cancelHeartbeat()
		<-heartbeatDone
		return cp.fail("metering reported a failure", nil)
	}

	if err = cp.clearChargingProfile(); err != nil {
		return err
	}
	cp.setStatus(StatusTransactionClosing)

	if err = cp.stopTransaction(); err != nil {
		return err
	}

	<-heartbeatDone
	if cp.failed.Load() {
		return cp.fail("heartbeat reported a failure", nil)
	}
	cp.setStatus(StatusDone)
	return nil
}

// boot returns the heartbeat interval adopted from the response.
func (cp *ChargePoint) boot() (time.Duration, error) {
	request := &core.BootNotificationRequest{
		ChargePointVendor: chargePointVendor,
		ChargePointModel:  chargePointModel,
		FirmwareVersion:   firmwareVersion,
		MeterType:         meterType,
	}
	payload, err := cp.exchange(core.BootNotificationFeatureName, request)
	if err != nil {
		return 0, cp.fail("boot notification failed", err)
	}
	if status, _ := payload["status"].(string); status != string(core.RegistrationStatusAccepted) {
		return 0, cp.fail(fmt.Sprintf("boot notification not accepted: %v", payload["status"]), nil)
	}
	interval := cp.FallbackInterval
	if raw, ok := payload["interval"].(float64); ok && raw > 0 && raw == float64(int(raw)) {
		interval = time.Duration(raw) * time.Second
	}
	cp.logger.FeatureEvent(core.BootNotificationFeatureName, cp.Id, fmt.Sprintf("boot accepted, heartbeat interval %s", interval))
	return interval, nil
}

func (cp *ChargePoint) notifyAvailable() error {
	request := &core.StatusNotificationRequest{
		ConnectorId: 0,
		Status:      core.ChargePointStatusAvailable,
		ErrorCode:   core.NoError,
		Timestamp:   types.NewDateTime(time.Now()).String(),
	}
	if _, err := cp.exchange(core.StatusNotificationFeatureName, request); err != nil {
		return cp.fail("status notification failed", err)
	}
	cp.logger.FeatureEvent(core.StatusNotificationFeatureName, cp.Id, "status notification acknowledged")
	return nil
}

func (cp *ChargePoint) startTransaction() error {
	request := &core.StartTransactionRequest{
		ConnectorId: connectorId,
		IdTag:       idTag,
		MeterStart:  0,
		Timestamp:   types.NewDateTime(time.Now()),
	}
	payload, err := cp.exchange(core.StartTransactionFeatureName, request)
	if err != nil {
		return cp.fail("start transaction failed", err)
	}
	rawId, ok := payload["transactionId"].(float64)
	if !ok || rawId != float64(int(rawId)) {
		return cp.fail("start transaction: missing transactionId", nil)
	}
	if !idTagAccepted(payload) {
		return cp.fail("start transaction not accepted", nil)
	}
	cp.transactionId = int(rawId)
	cp.logger.FeatureEvent(core.StartTransactionFeatureName, cp.Id, fmt.Sprintf("transaction %d started", cp.transactionId))
	return nil
}

func (cp *ChargePoint) setChargingProfile() error {
	request := &setChargingProfilePayload{
		ConnectorId: connectorId,
		ChargingProfile: &types.ChargingProfile{
			ChargingProfileId:      cp.ProfileId,
			StackLevel:             1,
			ChargingProfilePurpose: types.ChargingProfilePurposeTxProfile,
			ChargingProfileKind:    types.ChargingProfileKindAbsolute,
			ChargingSchedule: &types.ChargingSchedule{
				ChargingRateUnit: types.ChargingRateUnitWatts,
				ChargingSchedulePeriod: []types.ChargingSchedulePeriod{
					{StartPeriod: 0, Limit: float64(cp.LimitW)},
				},
			},
		},
	}
	payload, err := cp.exchange(smartcharging.SetChargingProfileFeatureName, request)
	if err != nil {
		return cp.fail("set charging profile failed", err)
	}
	if status, _ := payload["status"].(string); status != string(smartcharging.ChargingProfileStatusAccepted) {
		return cp.fail(fmt.Sprintf("set charging profile not accepted: %v", payload["status"]), nil)
	}
	cp.logger.FeatureEvent(smartcharging.SetChargingProfileFeatureName, cp.Id, fmt.Sprintf("profile %d installed, limit %d W", cp.ProfileId, cp.LimitW))
	return nil
}

func (cp *ChargePoint) clearChargingProfile() error {
	request := map[string]interface{}{"chargingProfileId": cp.ProfileId}
	payload, err := cp.exchange(smartcharging.ClearChargingProfileFeatureName, request)
	if err != nil {
		return cp.fail("clear charging profile failed", err)
	}
	if status, _ := payload["status"].(string); status != string(smartcharging.ClearChargingProfileStatusAccepted) {
		return cp.fail(fmt.Sprintf("clear charging profile not accepted: %v", payload["status"]), nil)
	}
	cp.logger.FeatureEvent(smartcharging.ClearChargingProfileFeatureName, cp.Id, fmt.Sprintf("profile %d cleared", cp.ProfileId))
	return nil
}

func (cp *ChargePoint) stopTransaction() error {
	request := &core.StopTransactionRequest{
		TransactionId: cp.transactionId,
		MeterStop:     cp.energyWh,
		Timestamp:     types.NewDateTime(time.Now()),
		IdTag:         idTag,
		Reason:        "Local",
	}
	payload, err := cp.exchange(core.StopTransactionFeatureName, request)
	if err != nil {
		return cp.fail("stop transaction failed", err)
	}
	if !idTagAccepted(payload) {
		return cp.fail("stop transaction not accepted", nil)
	}
	cp.logger.FeatureEvent(core.StopTransactionFeatureName, cp.Id, fmt.Sprintf("transaction %d stopped at %d Wh", cp.transactionId, cp.energyWh))
	return nil
}

type setChargingProfilePayload struct {
	ConnectorId     int                    `json:"connectorId"`
	ChargingProfile *types.ChargingProfile `json:"chargingProfile"`
}

func idTagAccepted(payload map[string]interface{}) bool {
	info, ok := payload["idTagInfo"].(map[string]interface{})
	if !ok {
		return false
	}
	status, _ := info["status"].(string)
	return status == string(types.AuthorizationStatusAccepted)
}
