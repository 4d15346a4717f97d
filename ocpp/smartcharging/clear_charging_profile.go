package smartcharging

import (
	"fmt"

	"evsim/ocpp"
)

const ClearChargingProfileFeatureName = "ClearChargingProfile"

type ClearChargingProfileStatus string

const (
	ClearChargingProfileStatusAccepted ClearChargingProfileStatus = "Accepted"
	ClearChargingProfileStatusUnknown  ClearChargingProfileStatus = "Unknown"
)

// ClearChargingProfileRequest a nil ChargingProfileId clears every profile
// installed for the session.
type ClearChargingProfileRequest struct {
	ChargingProfileId *int
}

type ClearChargingProfileResponse struct {
	Status     ClearChargingProfileStatus `json:"status"`
	ClearedIds []int                      `json:"clearedIds,omitempty"`
}

func (req *ClearChargingProfileRequest) GetFeatureName() string {
	return ClearChargingProfileFeatureName
}

func (req *ClearChargingProfileRequest) Summary() string {
	if req.ChargingProfileId == nil {
		return "clear all profiles"
	}
	return fmt.Sprintf("clear profile %d", *req.ChargingProfileId)
}

func (res *ClearChargingProfileResponse) GetFeatureName() string {
	return ClearChargingProfileFeatureName
}

func NewClearChargingProfileResponse(status ClearChargingProfileStatus, clearedIds []int) *ClearChargingProfileResponse {
	return &ClearChargingProfileResponse{Status: status, ClearedIds: clearedIds}
}

func ValidateClearChargingProfile(payload map[string]interface{}) (*ClearChargingProfileRequest, *ocpp.Error) {
	request := &ClearChargingProfileRequest{}
	if _, present := payload["chargingProfileId"]; present {
		profileId, err := ocpp.IntField(payload, "chargingProfileId")
		if err != nil {
			return nil, err
		}
		request.ChargingProfileId = &profileId
	}
	return request, nil
}
