package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"evsim/ocpp/core"
	"evsim/types"
)

type meterValuesPayload struct {
	ConnectorId   int                `json:"connectorId"`
	TransactionId int                `json:"transactionId"`
	MeterValue    []types.MeterValue `json:"meterValue"`
}

// heartbeatLoop sends a fixed number of heartbeats and exits. Cancelling the
// context stops it immediately, even mid wait.
func (cp *ChargePoint) heartbeatLoop(ctx context.Context, interval time.Duration) {
	for i := 1; i <= cp.HeartbeatCount; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		payload, err := cp.exchange(core.HeartbeatFeatureName, &core.HeartbeatRequest{})
		if err != nil {
			cp.logger.Error(fmt.Sprintf("heartbeat %d of %d", i, cp.HeartbeatCount), err)
			cp.failed.Store(true)
			return
		}
		currentTime, _ := payload["currentTime"].(string)
		cp.logger.FeatureEvent(core.HeartbeatFeatureName, cp.Id, fmt.Sprintf("heartbeat %d of %d acknowledged at %s", i, cp.HeartbeatCount, currentTime))
	}
}

// meterLoop reports the cumulative energy register until told to stop. The
// stop channel is checked before each send, so an in-flight exchange is never
// abandoned.
func (cp *ChargePoint) meterLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(cp.MeterPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		select {
		case <-stop:
			return
		default:
		}

		cp.energyWh += cp.MeterStep
		payload := &meterValuesPayload{
			ConnectorId:   connectorId,
			TransactionId: cp.transactionId,
			MeterValue: []types.MeterValue{
				{
					Timestamp: types.NewDateTime(time.Now()),
					SampledValue: []types.SampledValue{
						{
							Value:     strconv.Itoa(cp.energyWh),
							Measurand: types.MeasurandEnergyActiveImportRegister,
							Unit:      types.UnitOfMeasureWh,
						},
					},
				},
			},
		}
		if _, err := cp.exchange(core.MeterValuesFeatureName, payload); err != nil {
			cp.logger.Error("meter values", err)
			cp.failed.Store(true)
			return
		}
		cp.logger.FeatureEvent(core.MeterValuesFeatureName, cp.Id, fmt.Sprintf("meter sample acknowledged, register %d Wh", cp.energyWh))
	}
}
