package server

import (
	"sort"
	"sync"
	"time"

	"evsim/internal"
	"evsim/ocpp/core"
	"evsim/ocpp/smartcharging"
	"evsim/types"
)

const TransactionDataType = "transaction"

// TransactionRecord transaction ids are allocated from a single
// process-wide counter, never reused.
type TransactionRecord struct {
	Id            int             `json:"transaction_id" bson:"transaction_id"`
	ChargePointId string          `json:"charge_point_id" bson:"charge_point_id"`
	ConnectorId   int             `json:"connector_id" bson:"connector_id"`
	IdTag         string          `json:"id_tag" bson:"id_tag"`
	MeterStart    int             `json:"meter_start" bson:"meter_start"`
	MeterStop     int             `json:"meter_stop" bson:"meter_stop"`
	Reason        string          `json:"reason,omitempty" bson:"reason,omitempty"`
	StartedAt     *types.DateTime `json:"started_at,omitempty" bson:"started_at,omitempty"`
	StoppedAt     *types.DateTime `json:"stopped_at,omitempty" bson:"stopped_at,omitempty"`
	Completed     bool            `json:"completed" bson:"completed"`
}

func (t *TransactionRecord) DataType() string {
	return TransactionDataType
}

type ChargingProfileRecord struct {
	Profile    *types.ChargingProfile
	ReceivedAt time.Time
	LimitW     int
	Purpose    string
	StackLevel int
}

// ChargePointSession one per charge point identity, created lazily on the
// first message and kept for the process lifetime. Everything except the
// connection flags survives a reconnect.
type ChargePointSession struct {
	Connected           bool
	ConnectedAt         time.Time
	DisconnectedAt      time.Time
	LastSeenAt          time.Time
	BootAccepted        bool
	BootInfo            *core.BootNotificationRequest
	LastHeartbeatAt     time.Time
	Status              string
	ConnectorId         *int
	ActiveTransactionId *int
	Transactions        map[int]*TransactionRecord
	LastMeterWh         *int
	ChargingProfiles    map[int]*ChargingProfileRecord
}

type SystemHandler struct {
	mux               sync.Mutex
	sessions          map[string]*ChargePointSession
	nextTransactionId int
	heartbeatInterval int
	connections       int
	logger            internal.LogHandler
	database          internal.Database
	eventHandler      internal.EventHandler
}

func NewSystemHandler(heartbeatInterval int) *SystemHandler {
	return &SystemHandler{
		sessions:          make(map[string]*ChargePointSession),
		nextTransactionId: 1,
		heartbeatInterval: heartbeatInterval,
	}
}

func (h *SystemHandler) SetLogger(logger internal.LogHandler) {
	h.logger = logger
}

func (h *SystemHandler) SetDatabase(database internal.Database) {
	h.database = database
}

func (h *SystemHandler) SetEventHandler(eventHandler internal.EventHandler) {
	h.eventHandler = eventHandler
}

// session callers must hold h.mux.
func (h *SystemHandler) session(chargePointId string) *ChargePointSession {
	s, ok := h.sessions[chargePointId]
	if !ok {
		s = &ChargePointSession{
			Transactions:     make(map[int]*TransactionRecord),
			ChargingProfiles: make(map[int]*ChargingProfileRecord),
		}
		h.sessions[chargePointId] = s
	}
	return s
}

func (h *SystemHandler) OnConnect(chargePointId string) {
	h.mux.Lock()
	defer h.mux.Unlock()
	s := h.session(chargePointId)
	now := time.Now()
	s.Connected = true
	s.ConnectedAt = now
	s.LastSeenAt = now
	h.connections++
	observeConnections(h.connections)
}

func (h *SystemHandler) OnDisconnect(chargePointId string) {
	h.mux.Lock()
	defer h.mux.Unlock()
	s := h.session(chargePointId)
	s.Connected = false
	s.DisconnectedAt = time.Now()
	if h.connections > 0 {
		h.connections--
	}
	observeConnections(h.connections)
}

// Touch refreshes the last-seen timestamp on every inbound message.
func (h *SystemHandler) Touch(chargePointId string) {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.session(chargePointId).LastSeenAt = time.Now()
}

func (h *SystemHandler) OnBootNotification(chargePointId string, request *core.BootNotificationRequest) *core.BootNotificationResponse {
	h.mux.Lock()
	defer h.mux.Unlock()
	s := h.session(chargePointId)
	s.BootAccepted = true
	s.BootInfo = request
	return core.NewBootNotificationResponse(types.NewDateTime(time.Now()), h.heartbeatInterval, core.RegistrationStatusAccepted)
}

func (h *SystemHandler) OnHeartbeat(chargePointId string, request *core.HeartbeatRequest) *core.HeartbeatResponse {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.session(chargePointId).LastHeartbeatAt = time.Now()
	return core.NewHeartbeatResponse(types.NewDateTime(time.Now()))
}

func (h *SystemHandler) OnStatusNotification(chargePointId string, request *core.StatusNotificationRequest) *core.StatusNotificationResponse {
	h.mux.Lock()
	defer h.mux.Unlock()
	s := h.session(chargePointId)
	connectorId := request.ConnectorId
	s.Status = string(request.Status)
	s.ConnectorId = &connectorId
	return core.NewStatusNotificationResponse()
}

func (h *SystemHandler) OnStartTransaction(chargePointId string, request *core.StartTransactionRequest) *core.StartTransactionResponse {
	h.mux.Lock()
	transactionId := h.nextTransactionId
	h.nextTransactionId++
	transaction := &TransactionRecord{
		Id:            transactionId,
		ChargePointId: chargePointId,
		ConnectorId:   request.ConnectorId,
		IdTag:         request.IdTag,
		MeterStart:    request.MeterStart,
		StartedAt:     request.Timestamp,
	}
	s := h.session(chargePointId)
	s.Transactions[transactionId] = transaction
	s.ActiveTransactionId = &transactionId
	observeTransactions(h.activeTransactions())
	h.mux.Unlock()

	if h.eventHandler != nil {
		h.eventHandler.OnTransactionStart(&internal.EventMessage{
			ChargePointId: chargePointId,
			ConnectorId:   request.ConnectorId,
			Time:          time.Now(),
			IdTag:         request.IdTag,
			TransactionId: transactionId,
			MeterWh:       request.MeterStart,
		})
	}
	return core.NewStartTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusAccepted), transactionId)
}

func (h *SystemHandler) OnStopTransaction(chargePointId string, request *core.StopTransactionRequest) *core.StopTransactionResponse {
	h.mux.Lock()
	s := h.session(chargePointId)
	transaction, ok := s.Transactions[request.TransactionId]
	if !ok {
		transaction = &TransactionRecord{
			Id:            request.TransactionId,
			ChargePointId: chargePointId,
		}
		s.Transactions[request.TransactionId] = transaction
	}
	transaction.MeterStop = request.MeterStop
	transaction.StoppedAt = request.Timestamp
	transaction.Reason = request.Reason
	transaction.Completed = true
	meterStop := request.MeterStop
	s.LastMeterWh = &meterStop
	s.ActiveTransactionId = nil
	observeTransactions(h.activeTransactions())
	h.mux.Unlock()

	if h.database != nil {
		if err := h.database.WriteTransaction(transaction); err != nil {
			h.logger.Error("write transaction to database", err)
		}
	}
	if h.eventHandler != nil {
		h.eventHandler.OnTransactionStop(&internal.EventMessage{
			ChargePointId: chargePointId,
			ConnectorId:   transaction.ConnectorId,
			Time:          time.Now(),
			IdTag:         request.IdTag,
			TransactionId: request.TransactionId,
			MeterWh:       request.MeterStop,
		})
	}
	return core.NewStopTransactionResponse(types.NewIdTagInfo(types.AuthorizationStatusAccepted))
}

func (h *SystemHandler) OnMeterValues(chargePointId string, request *core.MeterValuesRequest) *core.MeterValuesResponse {
	h.mux.Lock()
	defer h.mux.Unlock()
	energy := request.EnergyWh
	h.session(chargePointId).LastMeterWh = &energy
	return core.NewMeterValuesResponse()
}

func (h *SystemHandler) OnSetChargingProfile(chargePointId string, request *smartcharging.SetChargingProfileRequest) *smartcharging.SetChargingProfileResponse {
	h.mux.Lock()
	defer h.mux.Unlock()
	s := h.session(chargePointId)
	profile := request.ChargingProfile
	s.ChargingProfiles[profile.ChargingProfileId] = &ChargingProfileRecord{
		Profile:    profile,
		ReceivedAt: time.Now(),
		LimitW:     request.LimitW,
		Purpose:    string(profile.ChargingProfilePurpose),
		StackLevel: profile.StackLevel,
	}
	return smartcharging.NewSetChargingProfileResponse(smartcharging.ChargingProfileStatusAccepted)
}

// OnClearChargingProfile always accepted, even when nothing matched.
func (h *SystemHandler) OnClearChargingProfile(chargePointId string, request *smartcharging.ClearChargingProfileRequest) *smartcharging.ClearChargingProfileResponse {
	h.mux.Lock()
	defer h.mux.Unlock()
	s := h.session(chargePointId)
	var clearedIds []int
	if request.ChargingProfileId == nil {
		for id := range s.ChargingProfiles {
			clearedIds = append(clearedIds, id)
		}
		sort.Ints(clearedIds)
		s.ChargingProfiles = make(map[int]*ChargingProfileRecord)
	} else if _, ok := s.ChargingProfiles[*request.ChargingProfileId]; ok {
		clearedIds = append(clearedIds, *request.ChargingProfileId)
		delete(s.ChargingProfiles, *request.ChargingProfileId)
	}
	return smartcharging.NewClearChargingProfileResponse(smartcharging.ClearChargingProfileStatusAccepted, clearedIds)
}

// activeTransactions callers must hold h.mux.
func (h *SystemHandler) activeTransactions() int {
	count := 0
	for _, s := range h.sessions {
		if s.ActiveTransactionId != nil {
			count++
		}
	}
	return count
}
