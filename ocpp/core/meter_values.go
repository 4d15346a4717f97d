package core

import (
	"fmt"

	"evsim/ocpp"
	"evsim/types"
)

const MeterValuesFeatureName = "MeterValues"

// MeterValuesRequest only the first sampled value of the first meter-value
// entry is modeled; it carries the cumulative energy register in Wh.
type MeterValuesRequest struct {
	ConnectorId   int
	TransactionId *int
	Timestamp     *types.DateTime
	EnergyWh      int
}

type MeterValuesResponse struct {
}

func (req *MeterValuesRequest) GetFeatureName() string {
	return MeterValuesFeatureName
}

func (req *MeterValuesRequest) Summary() string {
	return fmt.Sprintf("connector %d; energy %d Wh", req.ConnectorId, req.EnergyWh)
}

func (res *MeterValuesResponse) GetFeatureName() string {
	return MeterValuesFeatureName
}

func NewMeterValuesResponse() *MeterValuesResponse {
	return &MeterValuesResponse{}
}

func ValidateMeterValues(payload map[string]interface{}) (*MeterValuesRequest, *ocpp.Error) {
	connectorId, err := ocpp.ConnectorIdField(payload)
	if err != nil {
		return nil, err
	}
	meterValues, err := ocpp.ArrayField(payload, "meterValue")
	if err != nil {
		return nil, err
	}
	entry, ok := meterValues[0].(map[string]interface{})
	if !ok {
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "meterValue entries must be objects")
	}
	timestamp, err := ocpp.TimestampField(entry, "timestamp")
	if err != nil {
		return nil, err
	}
	sampledValues, err := ocpp.ArrayField(entry, "sampledValue")
	if err != nil {
		return nil, err
	}
	sample, ok := sampledValues[0].(map[string]interface{})
	if !ok {
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "sampledValue entries must be objects")
	}
	rawValue, ok := sample["value"]
	if !ok {
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "sampledValue value is required")
	}
	energy, err := ocpp.CoerceInt(rawValue, "sampledValue value")
	if err != nil {
		return nil, err
	}
	request := &MeterValuesRequest{
		ConnectorId: connectorId,
		Timestamp:   timestamp,
		EnergyWh:    energy,
	}
	if transactionId, txErr := ocpp.IntField(payload, "transactionId"); txErr == nil {
		request.TransactionId = &transactionId
	}
	return request, nil
}
