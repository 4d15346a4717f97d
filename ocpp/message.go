package ocpp

import (
	"encoding/json"
	"fmt"

	"evsim/utility"
)

type CallType int

const (
	CallTypeRequest CallType = 2
	CallTypeResult  CallType = 3
	CallTypeError   CallType = 4
)

// Call An OCPP-J CALL message: [2, uid, action, payload].
type Call struct {
	UniqueId string
	Action   string
	Payload  interface{}
}

func (call *Call) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 4)
	fields[0] = int(CallTypeRequest)
	fields[1] = call.UniqueId
	fields[2] = call.Action
	fields[3] = call.Payload
	return json.Marshal(fields)
}

// NewCall assigns a fresh unique id to an outbound request.
func NewCall(action string, payload interface{}) *Call {
	return &Call{
		UniqueId: utility.NewUUID(),
		Action:   action,
		Payload:  payload,
	}
}

// CallResult An OCPP-J CALLRESULT message: [3, uid, payload].
type CallResult struct {
	UniqueId string
	Payload  Response
}

func (callResult *CallResult) MarshalJSON() ([]byte, error) {
	fields := make([]interface{}, 3)
	fields[0] = int(CallTypeResult)
	fields[1] = callResult.UniqueId
	fields[2] = callResult.Payload
	return json.Marshal(fields)
}

func CreateCallResult(confirmation Response, uniqueId string) *CallResult {
	return &CallResult{
		UniqueId: uniqueId,
		Payload:  confirmation,
	}
}

// CallError An OCPP-J CALLERROR message: [4, uid, code, description, details].
type CallError struct {
	UniqueId    string
	Code        ErrorCode
	Description string
	Details     interface{}
}

func (callError *CallError) MarshalJSON() ([]byte, error) {
	details := callError.Details
	if details == nil {
		details = struct{}{}
	}
	fields := make([]interface{}, 5)
	fields[0] = int(CallTypeError)
	fields[1] = callError.UniqueId
	fields[2] = string(callError.Code)
	fields[3] = callError.Description
	fields[4] = details
	return json.Marshal(fields)
}

func CreateCallError(uniqueId string, err *Error) *CallError {
	return &CallError{
		UniqueId:    uniqueId,
		Code:        err.Code,
		Description: err.Description,
	}
}

// Decode parses one wire message. A failure here means the text is not valid
// JSON and is fatal to the connection.
func Decode(data []byte) (interface{}, error) {
	var message interface{}
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return message, nil
}

// MessageType reads the leading tag of a decoded frame.
func MessageType(message interface{}) (CallType, error) {
	fields, ok := message.([]interface{})
	if !ok || len(fields) < 3 {
		return 0, utility.Err("frame must be a JSON list of 3-5 elements")
	}
	rawType, ok := fields[0].(float64)
	if !ok {
		return 0, utility.Err("MessageTypeId must be a number")
	}
	return CallType(rawType), nil
}

// ValidateCall checks the CALL frame structure only, never field semantics.
// On failure the returned uid is non-empty when the frame was well-formed
// enough to answer with a CALLERROR; an empty uid means the connection must
// be closed.
func ValidateCall(message interface{}) (uid string, action string, payload map[string]interface{}, callErr *Error) {
	fields, ok := message.([]interface{})
	if !ok {
		return "", "", nil, NewError(FormationViolation, "frame must be a JSON list")
	}
	if len(fields) != 4 {
		return "", "", nil, NewError(FormationViolation, "CALL frame must have length 4")
	}
	rawType, ok := fields[0].(float64)
	if !ok || CallType(rawType) != CallTypeRequest {
		return "", "", nil, NewError(FormationViolation, "MessageTypeId must be 2 (CALL)")
	}
	uid, ok = fields[1].(string)
	if !ok || uid == "" {
		return "", "", nil, NewError(FormationViolation, "CALL uid must be a non-empty string")
	}
	action, ok = fields[2].(string)
	if !ok || action == "" {
		return uid, "", nil, NewError(FormationViolation, "CALL action must be a non-empty string")
	}
	payload, ok = fields[3].(map[string]interface{})
	if !ok {
		return uid, action, nil, NewError(FormationViolation, "CALL payload must be an object")
	}
	return uid, action, payload, nil
}
