package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/laundry-alert/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "ow-test-key"
	testLineToken = "line-test-token"
	testLineUser  = "U0123456789abcdef"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Locations, 3)
	assert.Equal(t, domain.Location{Name: "Suginami Central", Latitude: 35.6994, Longitude: 139.6364}, cfg.Locations[0])
	assert.Equal(t, "Suginami North West", cfg.Locations[1].Name)
	assert.Equal(t, "Suginami South", cfg.Locations[2].Name)

	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.OpenWeatherBaseURL)
	assert.Equal(t, "ja", cfg.OpenWeatherLang)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 60*time.Second, cfg.RunTimeout)
	assert.Equal(t, uint32(3), cfg.ProviderBreakerFailures)
	assert.Equal(t, "index.html", cfg.ReportOutput)
	assert.Equal(t, 8, cfg.ReportMaxRows)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone.String())
	assert.Equal(t, "laundry-readings", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	assert.False(t, cfg.ConditionsEnabled())
	assert.False(t, cfg.PrecipitationEnabled())
	assert.False(t, cfg.NotifyEnabled())
	assert.False(t, cfg.PublishEnabled())
	assert.False(t, cfg.MetricsPushEnabled())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("LOCATIONS", "Koenji@35.7052,139.6496")
	t.Setenv("OPENWEATHER_API_KEY", testAPIKey)
	t.Setenv("OPENWEATHER_LANG", "en")
	t.Setenv("YOLP_APP_ID", "yolp-id")
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", testLineToken)
	t.Setenv("LINE_USER_ID", testLineUser)
	t.Setenv("PROVIDER_TIMEOUT", "2s")
	t.Setenv("NOTIFY_TIMEOUT", "3s")
	t.Setenv("RUN_TIMEOUT", "30s")
	t.Setenv("PROVIDER_BREAKER_FAILURES", "5")
	t.Setenv("REPORT_OUTPUT", "public/index.html")
	t.Setenv("REPORT_URL", "https://example.com/laundry/")
	t.Setenv("REPORT_MAX_ROWS", "6")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "readings")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []domain.Location{{Name: "Koenji", Latitude: 35.7052, Longitude: 139.6496}}, cfg.Locations)
	assert.Equal(t, testAPIKey, cfg.OpenWeatherAPIKey)
	assert.Equal(t, "en", cfg.OpenWeatherLang)
	assert.Equal(t, 2*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 30*time.Second, cfg.RunTimeout)
	assert.Equal(t, uint32(5), cfg.ProviderBreakerFailures)
	assert.Equal(t, "public/index.html", cfg.ReportOutput)
	assert.Equal(t, "https://example.com/laundry/", cfg.ReportURL)
	assert.Equal(t, 6, cfg.ReportMaxRows)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "readings", cfg.KafkaTopic)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.True(t, cfg.ConditionsEnabled())
	assert.True(t, cfg.PrecipitationEnabled())
	assert.True(t, cfg.NotifyEnabled())
	assert.True(t, cfg.PublishEnabled())
	assert.True(t, cfg.MetricsPushEnabled())
	assert.Empty(t, cfg.MissingCapabilities())
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"PROVIDER_TIMEOUT", "NOTIFY_TIMEOUT", "RUN_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "soon")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
		t.Run(key+" negative", func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidBreakerFailures(t *testing.T) {
	t.Setenv("PROVIDER_BREAKER_FAILURES", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVIDER_BREAKER_FAILURES")
}

func TestLoad_InvalidMaxRows(t *testing.T) {
	for _, v := range []string{"0", "100", "many"} {
		t.Setenv("REPORT_MAX_ROWS", v)
		_, err := Load()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "REPORT_MAX_ROWS")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestLoad_NotifyNeedsBothCredentials(t *testing.T) {
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", testLineToken)

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.NotifyEnabled())

	var notify *domain.ConfigurationError
	for _, ce := range cfg.MissingCapabilities() {
		if ce.Capability == "notification" {
			notify = ce
		}
	}
	require.NotNil(t, notify)
	assert.Equal(t, []string{"LINE_USER_ID"}, notify.Missing)
	assert.Equal(t, "notification disabled: LINE_USER_ID not set", notify.Error())
}

func TestParseLocations(t *testing.T) {
	t.Run("multiple entries with spaces", func(t *testing.T) {
		got, err := ParseLocations(" Asagaya @ 35.7046 , 139.6357 ; Ogikubo@35.7047,139.6200 ;")
		require.NoError(t, err)
		assert.Equal(t, []domain.Location{
			{Name: "Asagaya", Latitude: 35.7046, Longitude: 139.6357},
			{Name: "Ogikubo", Latitude: 35.7047, Longitude: 139.62},
		}, got)
	})

	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"only separators", ";;"},
		{"missing at", "Koenji 35.7,139.6"},
		{"missing comma", "Koenji@35.7"},
		{"non-numeric", "Koenji@north,east"},
		{"latitude out of range", "Koenji@95,139.6"},
		{"longitude out of range", "Koenji@35.7,181"},
		{"missing name", "@35.7,139.6"},
		{"duplicate name", "Koenji@35.7,139.6;Koenji@35.6,139.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLocations(tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "LOCATIONS")
		})
	}
}
