package ocpp

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"evsim/types"
)

// CoerceInt accepts a value that can be losslessly interpreted as an integer.
// JSON numbers arrive as float64; charge points also send numeric registers
// as strings.
func CoerceInt(value interface{}, field string) (int, *Error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, NewError(FieldTypeError, fmt.Sprintf("%s must be an integer", field))
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, NewError(FieldTypeError, fmt.Sprintf("%s must be an integer", field))
		}
		return n, nil
	default:
		return 0, NewError(FieldTypeError, fmt.Sprintf("%s must be an integer", field))
	}
}

// IntField coerces a required payload field.
func IntField(payload map[string]interface{}, field string) (int, *Error) {
	return CoerceInt(payload[field], field)
}

// ConnectorIdField single-connector model: only connector 0 (the charge
// point itself) and connector 1 are valid.
func ConnectorIdField(payload map[string]interface{}) (int, *Error) {
	id, err := IntField(payload, "connectorId")
	if err != nil {
		return 0, err
	}
	if id != 0 && id != 1 {
		return 0, NewError(PropertyConstraintViolation, "connectorId must be 0 or 1")
	}
	return id, nil
}

func StringField(payload map[string]interface{}, field string) (string, *Error) {
	s, ok := payload[field].(string)
	if !ok || s == "" {
		return "", NewError(PropertyConstraintViolation, fmt.Sprintf("%s must be a non-empty string", field))
	}
	return s, nil
}

// OptionalStringField returns "" when the field is absent or not a string.
func OptionalStringField(payload map[string]interface{}, field string) string {
	s, _ := payload[field].(string)
	return s
}

// TimestampField parses the protocol timestamp form YYYY-MM-DDTHH:MM:SSZ.
func TimestampField(payload map[string]interface{}, field string) (*types.DateTime, *Error) {
	raw, ok := payload[field].(string)
	if !ok {
		return nil, NewError(FieldTypeError, fmt.Sprintf("%s must be a string", field))
	}
	t, err := time.Parse(types.ISO8601Z, raw)
	if err != nil {
		return nil, NewError(FieldTypeError, fmt.Sprintf("%s must be a timestamp in the form %s", field, types.ISO8601Z))
	}
	return types.NewDateTime(t), nil
}

func ObjectField(payload map[string]interface{}, field string) (map[string]interface{}, *Error) {
	obj, ok := payload[field].(map[string]interface{})
	if !ok {
		return nil, NewError(PropertyConstraintViolation, fmt.Sprintf("%s must be an object", field))
	}
	return obj, nil
}

// ArrayField requires a non-empty array.
func ArrayField(payload map[string]interface{}, field string) ([]interface{}, *Error) {
	arr, ok := payload[field].([]interface{})
	if !ok || len(arr) == 0 {
		return nil, NewError(PropertyConstraintViolation, fmt.Sprintf("%s must be a non-empty array", field))
	}
	return arr, nil
}
