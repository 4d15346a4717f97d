package core

import (
	"fmt"

	"evsim/ocpp"
	"evsim/types"
)

const StopTransactionFeatureName = "StopTransaction"

type StopTransactionRequest struct {
	TransactionId int             `json:"transactionId"`
	MeterStop     int             `json:"meterStop"`
	Timestamp     *types.DateTime `json:"timestamp"`
	IdTag         string          `json:"idTag,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

type StopTransactionResponse struct {
	IdTagInfo *types.IdTagInfo `json:"idTagInfo"`
}

func (req *StopTransactionRequest) GetFeatureName() string {
	return StopTransactionFeatureName
}

func (req *StopTransactionRequest) Summary() string {
	return fmt.Sprintf("transaction %d; meter stop %d", req.TransactionId, req.MeterStop)
}

func (res *StopTransactionResponse) GetFeatureName() string {
	return StopTransactionFeatureName
}

func NewStopTransactionResponse(idTagInfo *types.IdTagInfo) *StopTransactionResponse {
	return &StopTransactionResponse{IdTagInfo: idTagInfo}
}

func ValidateStopTransaction(payload map[string]interface{}) (*StopTransactionRequest, *ocpp.Error) {
	transactionId, err := ocpp.IntField(payload, "transactionId")
	if err != nil {
		return nil, err
	}
	meterStop, err := ocpp.IntField(payload, "meterStop")
	if err != nil {
		return nil, err
	}
	timestamp, err := ocpp.TimestampField(payload, "timestamp")
	if err != nil {
		return nil, err
	}
	return &StopTransactionRequest{
		TransactionId: transactionId,
		MeterStop:     meterStop,
		Timestamp:     timestamp,
		IdTag:         ocpp.OptionalStringField(payload, "idTag"),
		Reason:        ocpp.OptionalStringField(payload, "reason"),
	}, nil
}
