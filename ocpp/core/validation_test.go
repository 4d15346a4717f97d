package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"evsim/ocpp"
)

func payload(t *testing.T, text string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &m))
	return m
}

func TestValidateBootNotification(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		request, err := ValidateBootNotification(payload(t, `{
			"chargePointVendor": "RalphCo",
			"chargePointModel": "RalphModel1",
			"firmwareVersion": "0.1.0",
			"meterType": "RalphMeter"
		}`))
		require.Nil(t, err)
		require.Equal(t, "RalphCo", request.ChargePointVendor)
		require.Equal(t, "RalphModel1", request.ChargePointModel)
		require.Equal(t, "0.1.0", request.FirmwareVersion)
		require.Equal(t, "vendor RalphCo; model RalphModel1", request.Summary())
	})

	t.Run("missing vendor", func(t *testing.T) {
		_, err := ValidateBootNotification(payload(t, `{"chargePointModel": "RalphModel1"}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := ValidateBootNotification(payload(t, `{"chargePointVendor": "RalphCo"}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
	})
}

func TestValidateHeartbeat(t *testing.T) {
	request, err := ValidateHeartbeat(payload(t, `{}`))
	require.Nil(t, err)
	require.NotNil(t, request)

	// extra fields are ignored
	request, err = ValidateHeartbeat(payload(t, `{"anything": 1}`))
	require.Nil(t, err)
	require.NotNil(t, request)
}

func TestValidateStatusNotification(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		request, err := ValidateStatusNotification(payload(t, `{
			"connectorId": 0,
			"status": "Available",
			"errorCode": "NoError",
			"timestamp": "2024-05-10T12:30:45Z"
		}`))
		require.Nil(t, err)
		require.Equal(t, 0, request.ConnectorId)
		require.Equal(t, ChargePointStatusAvailable, request.Status)
	})

	t.Run("status other than Available", func(t *testing.T) {
		_, err := ValidateStatusNotification(payload(t, `{
			"connectorId": 0,
			"status": "Charging",
			"errorCode": "NoError"
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
		require.Equal(t, "status must be Available", err.Description)
	})

	t.Run("error code other than NoError", func(t *testing.T) {
		_, err := ValidateStatusNotification(payload(t, `{
			"connectorId": 0,
			"status": "Available",
			"errorCode": "GroundFailure"
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
	})

	t.Run("connector out of range", func(t *testing.T) {
		_, err := ValidateStatusNotification(payload(t, `{
			"connectorId": 3,
			"status": "Available",
			"errorCode": "NoError"
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
	})
}

func TestValidateStartTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		request, err := ValidateStartTransaction(payload(t, `{
			"connectorId": 1,
			"idTag": "TEST",
			"meterStart": 0,
			"timestamp": "2024-05-10T12:30:45Z"
		}`))
		require.Nil(t, err)
		require.Equal(t, 1, request.ConnectorId)
		require.Equal(t, "TEST", request.IdTag)
		require.Equal(t, 0, request.MeterStart)
	})

	t.Run("meterStart as numeric string", func(t *testing.T) {
		request, err := ValidateStartTransaction(payload(t, `{
			"connectorId": 1,
			"idTag": "TEST",
			"meterStart": "100",
			"timestamp": "2024-05-10T12:30:45Z"
		}`))
		require.Nil(t, err)
		require.Equal(t, 100, request.MeterStart)
	})

	t.Run("missing idTag", func(t *testing.T) {
		_, err := ValidateStartTransaction(payload(t, `{
			"connectorId": 1,
			"meterStart": 0,
			"timestamp": "2024-05-10T12:30:45Z"
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		_, err := ValidateStartTransaction(payload(t, `{
			"connectorId": 1,
			"idTag": "TEST",
			"meterStart": 0,
			"timestamp": "yesterday"
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.FieldTypeError, err.Code)
	})
}

func TestValidateStopTransaction(t *testing.T) {
	t.Run("valid with optional fields", func(t *testing.T) {
		request, err := ValidateStopTransaction(payload(t, `{
			"transactionId": 7,
			"meterStop": 500,
			"timestamp": "2024-05-10T12:30:45Z",
			"idTag": "TEST",
			"reason": "Local"
		}`))
		require.Nil(t, err)
		require.Equal(t, 7, request.TransactionId)
		require.Equal(t, 500, request.MeterStop)
		require.Equal(t, "TEST", request.IdTag)
		require.Equal(t, "Local", request.Reason)
	})

	t.Run("optional fields absent", func(t *testing.T) {
		request, err := ValidateStopTransaction(payload(t, `{
			"transactionId": 7,
			"meterStop": 500,
			"timestamp": "2024-05-10T12:30:45Z"
		}`))
		require.Nil(t, err)
		require.Empty(t, request.IdTag)
		require.Empty(t, request.Reason)
	})

	t.Run("fractional transactionId", func(t *testing.T) {
		_, err := ValidateStopTransaction(payload(t, `{
			"transactionId": 7.5,
			"meterStop": 500,
			"timestamp": "2024-05-10T12:30:45Z"
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.FieldTypeError, err.Code)
	})
}

func TestValidateMeterValues(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		request, err := ValidateMeterValues(payload(t, `{
			"connectorId": 1,
			"transactionId": 7,
			"meterValue": [{
				"timestamp": "2024-05-10T12:30:45Z",
				"sampledValue": [{"value": "1200", "measurand": "Energy.Active.Import.Register", "unit": "Wh"}]
			}]
		}`))
		require.Nil(t, err)
		require.Equal(t, 1, request.ConnectorId)
		require.Equal(t, 1200, request.EnergyWh)
		require.NotNil(t, request.TransactionId)
		require.Equal(t, 7, *request.TransactionId)
	})

	t.Run("value as number", func(t *testing.T) {
		request, err := ValidateMeterValues(payload(t, `{
			"connectorId": 1,
			"meterValue": [{
				"timestamp": "2024-05-10T12:30:45Z",
				"sampledValue": [{"value": 1200}]
			}]
		}`))
		require.Nil(t, err)
		require.Equal(t, 1200, request.EnergyWh)
		require.Nil(t, request.TransactionId)
	})

	t.Run("empty meterValue array", func(t *testing.T) {
		_, err := ValidateMeterValues(payload(t, `{"connectorId": 1, "meterValue": []}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
	})

	t.Run("missing sampled value", func(t *testing.T) {
		_, err := ValidateMeterValues(payload(t, `{
			"connectorId": 1,
			"meterValue": [{
				"timestamp": "2024-05-10T12:30:45Z",
				"sampledValue": [{"measurand": "Energy.Active.Import.Register"}]
			}]
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.PropertyConstraintViolation, err.Code)
		require.Equal(t, "sampledValue value is required", err.Description)
	})

	t.Run("non-numeric value", func(t *testing.T) {
		_, err := ValidateMeterValues(payload(t, `{
			"connectorId": 1,
			"meterValue": [{
				"timestamp": "2024-05-10T12:30:45Z",
				"sampledValue": [{"value": "lots"}]
			}]
		}`))
		require.NotNil(t, err)
		require.Equal(t, ocpp.FieldTypeError, err.Code)
	})
}
