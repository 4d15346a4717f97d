package core

import (
	"fmt"

	"evsim/ocpp"
	"evsim/types"
)

const BootNotificationFeatureName = "BootNotification"

type RegistrationStatus string

const (
	RegistrationStatusAccepted RegistrationStatus = "Accepted"
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

type BootNotificationRequest struct {
	ChargePointVendor       string `json:"chargePointVendor"`
	ChargePointModel        string `json:"chargePointModel"`
	ChargePointSerialNumber string `json:"chargePointSerialNumber,omitempty"`
	FirmwareVersion         string `json:"firmwareVersion,omitempty"`
	MeterType               string `json:"meterType,omitempty"`
}

type BootNotificationResponse struct {
	CurrentTime *types.DateTime    `json:"currentTime"`
	Interval    int                `json:"interval"`
	Status      RegistrationStatus `json:"status"`
}

func (req *BootNotificationRequest) GetFeatureName() string {
	return BootNotificationFeatureName
}

func (req *BootNotificationRequest) Summary() string {
	return fmt.Sprintf("vendor %s; model %s", req.ChargePointVendor, req.ChargePointModel)
}

func (res *BootNotificationResponse) GetFeatureName() string {
	return BootNotificationFeatureName
}

func NewBootNotificationResponse(currentTime *types.DateTime, interval int, status RegistrationStatus) *BootNotificationResponse {
	return &BootNotificationResponse{CurrentTime: currentTime, Interval: interval, Status: status}
}

func ValidateBootNotification(payload map[string]interface{}) (*BootNotificationRequest, *ocpp.Error) {
	vendor, err := ocpp.StringField(payload, "chargePointVendor")
	if err != nil {
		return nil, err
	}
	model, err := ocpp.StringField(payload, "chargePointModel")
	if err != nil {
		return nil, err
	}
	return &BootNotificationRequest{
		ChargePointVendor:       vendor,
		ChargePointModel:        model,
		ChargePointSerialNumber: ocpp.OptionalStringField(payload, "chargePointSerialNumber"),
		FirmwareVersion:         ocpp.OptionalStringField(payload, "firmwareVersion"),
		MeterType:               ocpp.OptionalStringField(payload, "meterType"),
	}, nil
}
