package utility

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	protocols := []string{"ocpp1.6", "ocpp2.0.1"}
	require.True(t, Contains(protocols, "ocpp1.6"))
	require.False(t, Contains(protocols, "ocpp1.5"))
	require.False(t, Contains(nil, "ocpp1.6"))
}

func TestErr(t *testing.T) {
	err := Err("close connection")
	require.EqualError(t, err, "close connection")
}

func TestNewUUID(t *testing.T) {
	first := NewUUID()
	second := NewUUID()
	require.NotEmpty(t, first)
	require.NotEqual(t, first, second)
}
