package core

import (
	"evsim/ocpp"
	"evsim/types"
)

const HeartbeatFeatureName = "Heartbeat"

type HeartbeatRequest struct {
}

type HeartbeatResponse struct {
	CurrentTime *types.DateTime `json:"currentTime"`
}

func (req *HeartbeatRequest) GetFeatureName() string {
	return HeartbeatFeatureName
}

func (req *HeartbeatRequest) Summary() string {
	return "heartbeat"
}

func (res *HeartbeatResponse) GetFeatureName() string {
	return HeartbeatFeatureName
}

func NewHeartbeatResponse(currentTime *types.DateTime) *HeartbeatResponse {
	return &HeartbeatResponse{CurrentTime: currentTime}
}

// ValidateHeartbeat Heartbeat carries no fields.
func ValidateHeartbeat(payload map[string]interface{}) (*HeartbeatRequest, *ocpp.Error) {
	return &HeartbeatRequest{}, nil
}
