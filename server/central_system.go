package server

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"evsim/internal"
	"evsim/internal/config"
	"evsim/ocpp"
	"evsim/ocpp/core"
	"evsim/ocpp/smartcharging"
	"evsim/telegram"
	"evsim/types"
	"evsim/utility"
)

// DumpStateCommand is the out-of-protocol control message answered with a
// JSON summary of every known charge point session.
const DumpStateCommand = "DUMP_STATE"

type CentralSystem struct {
	conf    *config.Config
	server  *Server
	api     *Api
	logger  internal.LogHandler
	handler *SystemHandler
}

func (cs *CentralSystem) handleIncomingMessage(ws *WebSocket, data []byte) error {
	reply, closeConn := cs.process(ws.ID(), data)
	if reply != nil {
		if err := cs.server.Send(ws, reply); err != nil {
			return err
		}
	}
	if closeConn {
		return ErrCloseConnection
	}
	return nil
}

// process sequences one inbound message into at most one reply. A true
// closeConn means the reply (if any) is a diagnostic text and the connection
// must be terminated.
func (cs *CentralSystem) process(chargePointId string, data []byte) (reply []byte, closeConn bool) {
	if strings.TrimSpace(string(data)) == DumpStateCommand {
		dump, err := json.Marshal(cs.handler.DumpState())
		if err != nil {
			cs.logger.Error("encoding state dump", err)
			return nil, false
		}
		return dump, false
	}

	message, err := ocpp.Decode(data)
	if err != nil {
		cs.logger.Warn(fmt.Sprintf("dropping connection of %s: %s", chargePointId, err))
		return []byte("ERROR: invalid JSON"), true
	}

	uid, action, payload, callErr := ocpp.ValidateCall(message)
	if callErr != nil {
		observeError(chargePointId, string(callErr.Code))
		if uid == "" {
			cs.logger.Warn(fmt.Sprintf("dropping connection of %s: %s", chargePointId, callErr.Description))
			return []byte("ERROR: " + callErr.Description), true
		}
		return cs.marshalCallError(uid, callErr), false
	}

	cs.handler.Touch(chargePointId)

	request, callErr := validateAction(action, payload)
	if callErr != nil {
		observeError(chargePointId, string(callErr.Code))
		cs.logger.FeatureEvent(action, chargePointId, fmt.Sprintf("rejected: %s", callErr))
		return cs.marshalCallError(uid, callErr), false
	}
	cs.logger.FeatureEvent(action, chargePointId, request.Summary())

	confirmation, err := cs.dispatch(chargePointId, request)
	if err != nil {
		cs.logger.Error(fmt.Sprintf("dispatching %s for %s", action, chargePointId), err)
		return cs.marshalCallError(uid, ocpp.NewError(ocpp.NotSupported, "action not implemented")), false
	}

	result, err := ocpp.CreateCallResult(confirmation, uid).MarshalJSON()
	if err != nil {
		cs.logger.Error("encoding response", err)
		return nil, false
	}
	return result, false
}

// dispatch applies the state transition for an already validated request.
func (cs *CentralSystem) dispatch(chargePointId string, request ocpp.Request) (ocpp.Response, error) {
	switch req := request.(type) {
	case *core.BootNotificationRequest:
		return cs.handler.OnBootNotification(chargePointId, req), nil
	case *core.HeartbeatRequest:
		return cs.handler.OnHeartbeat(chargePointId, req), nil
	case *core.StatusNotificationRequest:
		return cs.handler.OnStatusNotification(chargePointId, req), nil
	case *core.StartTransactionRequest:
		return cs.handler.OnStartTransaction(chargePointId, req), nil
	case *core.StopTransactionRequest:
		return cs.handler.OnStopTransaction(chargePointId, req), nil
	case *core.MeterValuesRequest:
		return cs.handler.OnMeterValues(chargePointId, req), nil
	case *smartcharging.SetChargingProfileRequest:
		return cs.handler.OnSetChargingProfile(chargePointId, req), nil
	case *smartcharging.ClearChargingProfileRequest:
		return cs.handler.OnClearChargingProfile(chargePointId, req), nil
	default:
		return nil, utility.Err(fmt.Sprintf("no handler for %s", request.GetFeatureName()))
	}
}

func (cs *CentralSystem) marshalCallError(uid string, callErr *ocpp.Error) []byte {
	data, err := ocpp.CreateCallError(uid, callErr).MarshalJSON()
	if err != nil {
		cs.logger.Error("encoding call error", err)
		return nil
	}
	return data
}

func (cs *CentralSystem) Start() {
	go func() {
		if err := cs.server.Start(); err != nil {
			cs.logger.Error("websocket server failed", err)
		}
	}()

	if cs.api != nil {
		go func() {
			if err := cs.api.Start(); err != nil {
				cs.logger.Error("api server failed", err)
			}
		}()
	}

	select {}
}

func NewCentralSystem(conf *config.Config) (*CentralSystem, error) {
	cs := &CentralSystem{conf: conf}

	var database internal.Database
	if conf.Mongo.Enabled {
		mongo, err := internal.NewMongoClient(conf)
		if err != nil {
			return nil, fmt.Errorf("mongodb setup failed: %s", err)
		}
		if mongo != nil {
			database = mongo
			log.Println("mongodb is configured and enabled")
		}
	} else {
		log.Println("database is disabled")
	}

	logService := internal.NewLogger()
	logService.SetDebugMode(conf.IsDebug)
	logService.SetDatabase(database)
	cs.logger = logService

	systemHandler := NewSystemHandler(conf.HeartbeatInterval)
	systemHandler.SetLogger(logService)
	systemHandler.SetDatabase(database)

	if conf.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(conf.Telegram.ApiKey, conf.Telegram.ChatIds)
		if err != nil {
			return nil, fmt.Errorf("telegram bot setup failed: %s", err)
		}
		telegramBot.Start()
		systemHandler.SetEventHandler(telegramBot)
		log.Println("telegram bot is configured and enabled")
	}

	cs.handler = systemHandler

	wsServer := NewServer(conf, logService)
	wsServer.AddSupportedSubProtocol(types.SubProtocol16)
	wsServer.SetMessageHandler(cs.handleIncomingMessage)
	wsServer.SetWatchdog(systemHandler)
	cs.server = wsServer

	if conf.Api.Enabled {
		apiServer := NewServerApi(conf, logService)
		apiServer.SetStateProvider(func() ([]byte, error) {
			return json.Marshal(systemHandler.DumpState())
		})
		cs.api = apiServer
	}

	return cs, nil
}
