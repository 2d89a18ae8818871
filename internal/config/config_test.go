package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CommissionsOnlyWhenSet(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("COMMISSION_DHL_PERCENT", "12.5")
	t.Setenv("FALLBACK_DHL_BASE", "35")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"dhl": 12.5}, cfg.Engine.Commissions)
	assert.Equal(t, FallbackRateConfig{Base: 35}, cfg.Engine.FallbackRates["dhl"])
	assert.Equal(t, []string{"fedex", "dhl", "ups"}, cfg.Engine.CarrierOrder)
	assert.Equal(t, 2500.0, cfg.Engine.LowValueThreshold)
	assert.True(t, cfg.Carriers.UPS.Enabled)
}

func TestCarriersConfig_ByCode(t *testing.T) {
	c := CarriersConfig{UPS: CarrierConfig{AccountNumber: "A1"}}

	got, ok := c.ByCode("UPS")
	require.True(t, ok)
	assert.Equal(t, "A1", got.AccountNumber)

	_, ok = c.ByCode("usps")
	assert.False(t, ok)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"ups", "dhl"}, splitList(" UPS, ,dhl "))
	assert.Nil(t, splitList(""))
}
