package client

import (
	"fmt"

	"github.com/gorilla/websocket"

	"evsim/ocpp"
	"evsim/utility"
)

// exchange sends one CALL and blocks until its answer arrives. The guard
// serializes concurrent callers, so the next frame on the socket is always
// the answer to the frame just written.
func (cp *ChargePoint) exchange(action string, payload interface{}) (map[string]interface{}, error) {
	cp.mux.Lock()
	defer cp.mux.Unlock()

	call := ocpp.NewCall(action, payload)
	data, err := call.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", action, err)
	}
	cp.logger.RawDataEvent("OUT", cp.Id, string(data))
	if err = cp.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return nil, fmt.Errorf("sending %s: %w", action, err)
	}

	_, response, err := cp.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", action, err)
	}
	cp.logger.RawDataEvent("IN", cp.Id, string(response))
	return parseResponse(action, response, call.UniqueId)
}

func parseResponse(action string, data []byte, expectedUid string) (map[string]interface{}, error) {
	message, err := ocpp.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s response: %w", action, err)
	}
	fields, ok := message.([]interface{})
	if !ok || len(fields) < 3 {
		return nil, utility.Err(action + " response is not a valid frame")
	}
	messageType, ok := fields[0].(float64)
	if !ok {
		return nil, utility.Err(action + " response has a non-numeric message type")
	}
	uid, _ := fields[1].(string)
	if uid != expectedUid {
		return nil, fmt.Errorf("%s response uid mismatch: want %s, got %s", action, expectedUid, uid)
	}
	switch ocpp.CallType(messageType) {
	case ocpp.CallTypeResult:
		payload, ok := fields[2].(map[string]interface{})
		if !ok {
			return nil, utility.Err(action + " response payload is not an object")
		}
		return payload, nil
	case ocpp.CallTypeError:
		code, _ := fields[2].(string)
		description := ""
		if len(fields) > 3 {
			description, _ = fields[3].(string)
		}
		return nil, fmt.Errorf("%s rejected: %s (%s)", action, code, description)
	default:
		return nil, fmt.Errorf("%s response has unexpected message type %v", action, messageType)
	}
}
