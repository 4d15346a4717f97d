package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	conf, err := GetConfig()
	require.NoError(t, err)
	require.NotNil(t, conf)

	require.Equal(t, "5000", conf.Listen.Port)
	require.Equal(t, 30, conf.HeartbeatInterval)
	require.Equal(t, "CP_1", conf.Client.ChargePointId)
	require.Equal(t, 3, conf.Client.HeartbeatCount)
	require.Equal(t, 10, conf.Client.FallbackInterval)
	require.Equal(t, 5, conf.Client.MeterPeriod)
	require.Equal(t, 100, conf.Client.MeterStep)
	require.Equal(t, 1, conf.Client.ProfileId)
	require.Equal(t, 7000, conf.Client.LimitW)
	require.False(t, conf.Mongo.Enabled)
	require.False(t, conf.Telegram.Enabled)

	// the instance is a singleton
	again, err := GetConfig()
	require.NoError(t, err)
	require.Same(t, conf, again)
}
