package types

import (
	"encoding/json"
	"time"
)

// ISO8601Z is the wire form of every protocol timestamp: UTC, whole seconds,
// literal Z suffix.
const ISO8601Z = "2006-01-02T15:04:05Z"

// DateTime wraps a time.Time struct, allowing for improved dateTime JSON compatibility.
type DateTime struct {
	time.Time
}

// NewDateTime Creates a new DateTime struct, embedding a time.Time struct.
// The value is normalized to UTC and truncated to whole seconds.
func NewDateTime(time time.Time) *DateTime {
	return &DateTime{Time: time.UTC().Truncate(1e9)}
}

func (dt *DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := time.Parse(ISO8601Z, raw)
	if err != nil {
		return err
	}
	dt.Time = t
	return nil
}

func (dt *DateTime) String() string {
	return dt.Time.UTC().Format(ISO8601Z)
}
