package server

import (
	"evsim/ocpp"
	"evsim/ocpp/core"
	"evsim/ocpp/smartcharging"
)

// validateAction applies the per-action payload rules over the fixed action
// set. Anything outside the set is never dispatched to the state machine.
func validateAction(action string, payload map[string]interface{}) (ocpp.Request, *ocpp.Error) {
	switch action {
	case core.BootNotificationFeatureName:
		request, err := core.ValidateBootNotification(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	case core.HeartbeatFeatureName:
		request, err := core.ValidateHeartbeat(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	case core.StatusNotificationFeatureName:
		request, err := core.ValidateStatusNotification(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	case core.StartTransactionFeatureName:
		request, err := core.ValidateStartTransaction(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	case core.StopTransactionFeatureName:
		request, err := core.ValidateStopTransaction(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	case core.MeterValuesFeatureName:
		request, err := core.ValidateMeterValues(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	case smartcharging.SetChargingProfileFeatureName:
		request, err := smartcharging.ValidateSetChargingProfile(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	case smartcharging.ClearChargingProfileFeatureName:
		request, err := smartcharging.ValidateClearChargingProfile(payload)
		if err != nil {
			return nil, err
		}
		return request, nil
	default:
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "unsupported action")
	}
}
