package smartcharging

import (
	"fmt"

	"evsim/ocpp"
	"evsim/types"
)

const SetChargingProfileFeatureName = "SetChargingProfile"

type ChargingProfileStatus string

const (
	ChargingProfileStatusAccepted ChargingProfileStatus = "Accepted"
	ChargingProfileStatusRejected ChargingProfileStatus = "Rejected"
)

type SetChargingProfileRequest struct {
	ConnectorId     int
	ChargingProfile *types.ChargingProfile
	// LimitW power limit of the first schedule period, in the schedule's rate unit.
	LimitW int
}

type SetChargingProfileResponse struct {
	Status ChargingProfileStatus `json:"status"`
}

func (req *SetChargingProfileRequest) GetFeatureName() string {
	return SetChargingProfileFeatureName
}

func (req *SetChargingProfileRequest) Summary() string {
	return fmt.Sprintf("profile %d; stack level %d; limit %d", req.ChargingProfile.ChargingProfileId, req.ChargingProfile.StackLevel, req.LimitW)
}

func (res *SetChargingProfileResponse) GetFeatureName() string {
	return SetChargingProfileFeatureName
}

func NewSetChargingProfileResponse(status ChargingProfileStatus) *SetChargingProfileResponse {
	return &SetChargingProfileResponse{Status: status}
}

func ValidateSetChargingProfile(payload map[string]interface{}) (*SetChargingProfileRequest, *ocpp.Error) {
	profile, err := ocpp.ObjectField(payload, "chargingProfile")
	if err != nil {
		return nil, err
	}
	profileId, err := ocpp.IntField(profile, "chargingProfileId")
	if err != nil {
		return nil, err
	}
	stackLevel, err := ocpp.IntField(profile, "stackLevel")
	if err != nil {
		return nil, err
	}
	purpose, err := ocpp.StringField(profile, "chargingProfilePurpose")
	if err != nil {
		return nil, err
	}
	kind, err := ocpp.StringField(profile, "chargingProfileKind")
	if err != nil {
		return nil, err
	}
	schedule, err := ocpp.ObjectField(profile, "chargingSchedule")
	if err != nil {
		return nil, err
	}
	rateUnit, err := ocpp.StringField(schedule, "chargingRateUnit")
	if err != nil {
		return nil, err
	}
	periods, err := ocpp.ArrayField(schedule, "chargingSchedulePeriod")
	if err != nil {
		return nil, err
	}
	first, ok := periods[0].(map[string]interface{})
	if !ok {
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "chargingSchedulePeriod entries must be objects")
	}
	limit, ok := first["limit"].(float64)
	if !ok {
		return nil, ocpp.NewError(ocpp.PropertyConstraintViolation, "chargingSchedulePeriod limit must be a number")
	}

	schedulePeriods := make([]types.ChargingSchedulePeriod, 0, len(periods))
	for _, raw := range periods {
		period, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		start, _ := period["startPeriod"].(float64)
		periodLimit, _ := period["limit"].(float64)
		schedulePeriods = append(schedulePeriods, types.ChargingSchedulePeriod{
			StartPeriod: int(start),
			Limit:       periodLimit,
		})
	}

	request := &SetChargingProfileRequest{
		ChargingProfile: &types.ChargingProfile{
			ChargingProfileId:      profileId,
			StackLevel:             stackLevel,
			ChargingProfilePurpose: types.ChargingProfilePurposeType(purpose),
			ChargingProfileKind:    types.ChargingProfileKindType(kind),
			ChargingSchedule: &types.ChargingSchedule{
				ChargingRateUnit:       types.ChargingRateUnitType(rateUnit),
				ChargingSchedulePeriod: schedulePeriods,
			},
		},
		LimitW: int(limit),
	}
	if connectorId, cErr := ocpp.IntField(payload, "connectorId"); cErr == nil {
		request.ConnectorId = connectorId
	}
	return request, nil
}
