package server

import (
	"sort"
	"time"

	"evsim/types"
)

// StateDump is the answer to the DUMP_STATE control message and to the
// HTTP state endpoint.
type StateDump struct {
	Sessions []SessionSummary `json:"sessions"`
}

type SessionSummary struct {
	ChargePointId       string           `json:"charge_point_id"`
	Connected           bool             `json:"connected"`
	BootAccepted        bool             `json:"boot_accepted"`
	Status              string           `json:"status,omitempty"`
	ConnectorId         *int             `json:"connector_id,omitempty"`
	ActiveTransactionId *int             `json:"active_transaction_id"`
	LastSeenAt          string           `json:"last_seen_at,omitempty"`
	LastHeartbeatAt     string           `json:"last_heartbeat_at,omitempty"`
	LastMeterWh         *int             `json:"last_meter_wh"`
	Transactions        int              `json:"transactions"`
	ChargingProfiles    []ProfileSummary `json:"charging_profiles"`
}

type ProfileSummary struct {
	ProfileId  int    `json:"profile_id"`
	LimitW     int    `json:"limit_w"`
	Purpose    string `json:"purpose"`
	StackLevel int    `json:"stack_level"`
}

func (h *SystemHandler) DumpState() *StateDump {
	h.mux.Lock()
	defer h.mux.Unlock()

	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	dump := &StateDump{Sessions: make([]SessionSummary, 0, len(ids))}
	for _, id := range ids {
		s := h.sessions[id]
		summary := SessionSummary{
			ChargePointId:       id,
			Connected:           s.Connected,
			BootAccepted:        s.BootAccepted,
			Status:              s.Status,
			ConnectorId:         s.ConnectorId,
			ActiveTransactionId: s.ActiveTransactionId,
			LastSeenAt:          formatTime(s.LastSeenAt),
			LastHeartbeatAt:     formatTime(s.LastHeartbeatAt),
			LastMeterWh:         s.LastMeterWh,
			Transactions:        len(s.Transactions),
			ChargingProfiles:    make([]ProfileSummary, 0, len(s.ChargingProfiles)),
		}
		profileIds := make([]int, 0, len(s.ChargingProfiles))
		for profileId := range s.ChargingProfiles {
			profileIds = append(profileIds, profileId)
		}
		sort.Ints(profileIds)
		for _, profileId := range profileIds {
			record := s.ChargingProfiles[profileId]
			summary.ChargingProfiles = append(summary.ChargingProfiles, ProfileSummary{
				ProfileId:  profileId,
				LimitW:     record.LimitW,
				Purpose:    record.Purpose,
				StackLevel: record.StackLevel,
			})
		}
		dump.Sessions = append(dump.Sessions, summary)
	}
	return dump
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return types.NewDateTime(t).String()
}
