package core

import (
	"fmt"

	"evsim/ocpp"
	"evsim/types"
)

const StartTransactionFeatureName = "StartTransaction"

type StartTransactionRequest struct {
	ConnectorId int             `json:"connectorId"`
	IdTag       string          `json:"idTag"`
	MeterStart  int             `json:"meterStart"`
	Timestamp   *types.DateTime `json:"timestamp"`
}

type StartTransactionResponse struct {
	IdTagInfo     *types.IdTagInfo `json:"idTagInfo"`
	TransactionId int              `json:"transactionId"`
}

func (req *StartTransactionRequest) GetFeatureName() string {
	return StartTransactionFeatureName
}

func (req *StartTransactionRequest) Summary() string {
	return fmt.Sprintf("connector %d; tag %s; meter start %d", req.ConnectorId, req.IdTag, req.MeterStart)
}

func (res *StartTransactionResponse) GetFeatureName() string {
	return StartTransactionFeatureName
}

func NewStartTransactionResponse(idTagInfo *types.IdTagInfo, transactionId int) *StartTransactionResponse {
	return &StartTransactionResponse{IdTagInfo: idTagInfo, TransactionId: transactionId}
}

func ValidateStartTransaction(payload map[string]interface{}) (*StartTransactionRequest, *ocpp.Error) {
	connectorId, err := ocpp.ConnectorIdField(payload)
	if err != nil {
		return nil, err
	}
	idTag, err := ocpp.StringField(payload, "idTag")
	if err != nil {
		return nil, err
	}
	meterStart, err := ocpp.IntField(payload, "meterStart")
	if err != nil {
		return nil, err
	}
	timestamp, err := ocpp.TimestampField(payload, "timestamp")
	if err != nil {
		return nil, err
	}
	return &StartTransactionRequest{
		ConnectorId: connectorId,
		IdTag:       idTag,
		MeterStart:  meterStart,
		Timestamp:   timestamp,
	}, nil
}
