package core

import (
	"fmt"

	"evsim/ocpp"
)

const StatusNotificationFeatureName = "StatusNotification"

type ChargePointStatus string

const ChargePointStatusAvailable ChargePointStatus = "Available"

type ChargePointErrorCode string

const NoError ChargePointErrorCode = "NoError"

type StatusNotificationRequest struct {
	ConnectorId int                  `json:"connectorId"`
	Status      ChargePointStatus    `json:"status"`
	ErrorCode   ChargePointErrorCode `json:"errorCode"`
	Timestamp   string               `json:"timestamp,omitempty"`
}

type StatusNotificationResponse struct {
}

func (req *StatusNotificationRequest) GetFeatureName() string {
	return StatusNotificationFeatureName
}

func (req *StatusNotificationRequest) Summary() string {
	return fmt.Sprintf("connector %d is %s", req.ConnectorId, req.Status)
}

func (res *StatusNotificationResponse) GetFeatureName() string {
	return StatusNotificationFeatureName
}

func NewStatusNotificationResponse() *StatusNotificationResponse {
	return &StatusNotificationResponse{}
}

// ValidateStatusNotification the simulator models a healthy single-connector
// charge point: only Available/NoError notifications are accepted.
func ValidateStatusNotification(payload map[string]interface{}) (*StatusNotificationRequest, *ocpp.Error) {
	connectorId, err := ocpp.ConnectorIdField(payload)
	if err != nil {
		return nil, err
	}
	status, err := ocpp.StringField(payload, "status")
	if err != nil {
		return nil, err
	}
	if ChargePointStatus(status) != ChargePointStatusAvailable {
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "status must be Available")
	}
	errorCode, err := ocpp.StringField(payload, "errorCode")
	if err != nil {
		return nil, err
	}
	if ChargePointErrorCode(errorCode) != NoError {
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "errorCode must be NoError")
	}
	return &StatusNotificationRequest{
		ConnectorId: connectorId,
		Status:      ChargePointStatus(status),
		ErrorCode:   ChargePointErrorCode(errorCode),
		Timestamp:   ocpp.OptionalStringField(payload, "timestamp"),
	}, nil
}
