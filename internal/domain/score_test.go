package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearSnapshot(humidity, clouds int) WeatherSnapshot {
	return WeatherSnapshot{
		TemperatureC:  22,
		HumidityPct:   humidity,
		CloudCoverPct: clouds,
		Condition:     ConditionClear,
		ObservedAt:    time.Date(2024, 4, 26, 6, 0, 0, 0, time.UTC),
	}
}

func forecastOf(conditions ...Condition) ForecastSeries {
	start := time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC)
	series := make(ForecastSeries, len(conditions))
	for i, c := range conditions {
		series[i] = ForecastPoint{At: start.Add(time.Duration(i) * 3 * time.Hour), Condition: c, HumidityPct: 50}
	}
	return series
}

func TestScore_Scenarios(t *testing.T) {
	t.Run("current rain forces severe", func(t *testing.T) {
		current := clearSnapshot(70, 0)
		current.Condition = ConditionRain

		got := Score(current, nil, nil)

		assert.Equal(t, 0, got.Score)
		assert.Equal(t, AccentSevere, got.Accent)
		assert.Equal(t, TriggerCurrentCondition, got.Trigger)
		assert.Equal(t, AdvisorySevereRain, got.Advisory)
	})

	t.Run("clear and dry is perfect", func(t *testing.T) {
		got := Score(clearSnapshot(40, 0), forecastOf(ConditionClear), nil)

		assert.Equal(t, 100, got.Score)
		assert.Equal(t, AccentGood, got.Accent)
		assert.Equal(t, StatusGood, got.Status)
		assert.Equal(t, TriggerNone, got.Trigger)
	})

	t.Run("exactly fifty is poor", func(t *testing.T) {
		got := Score(clearSnapshot(85, 0), forecastOf(ConditionClear), nil)

		assert.Equal(t, 50, got.Score)
		assert.Equal(t, AccentPoor, got.Accent)
		assert.Equal(t, StatusPoor, got.Status)
	})
}

func TestScore_Penalties(t *testing.T) {
	tests := []struct {
		name     string
		humidity int
		clouds   int
		want     int
		accent   Accent
	}{
		{"dry clear", 30, 0, 100, AccentGood},
		{"humidity at moderate threshold", 60, 0, 100, AccentGood},
		{"moderate humidity", 61, 0, 80, AccentFair},
		{"humidity at high threshold", 80, 0, 80, AccentFair},
		{"high humidity", 81, 0, 50, AccentPoor},
		{"some cloud", 40, 50, 85, AccentGood},
		{"fractional cloud penalty rounds", 70, 33, 70, AccentFair},
		{"humid overcast", 90, 100, 20, AccentPoor},
		{"just above good floor", 40, 63, 81, AccentGood},
		{"just above fair floor", 61, 96, 51, AccentFair},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(clearSnapshot(tt.humidity, tt.clouds), nil, nil)
			assert.Equal(t, tt.want, got.Score)
			assert.Equal(t, tt.accent, got.Accent)
		})
	}
}

func TestHumidityPenalty_Monotonic(t *testing.T) {
	prev := HumidityPenalty(0)
	for h := 1; h <= 100; h++ {
		p := HumidityPenalty(h)
		assert.GreaterOrEqual(t, p, prev, "humidity %d", h)
		prev = p
	}

	prevScore := Score(clearSnapshot(0, 0), nil, nil).Score
	for h := 1; h <= 100; h++ {
		s := Score(clearSnapshot(h, 0), nil, nil).Score
		assert.LessOrEqual(t, s, prevScore, "humidity %d", h)
		prevScore = s
	}
}

func TestScore_PrecipitationDominates(t *testing.T) {
	signal := NewPrecipitationSignal([]PrecipitationSample{
		{At: time.Date(2024, 4, 26, 6, 0, 0, 0, time.UTC), IntensityMMPerHr: 0.35},
	})

	for h := 0; h <= 100; h += 5 {
		for c := 0; c <= 100; c += 25 {
			got := Score(clearSnapshot(h, c), forecastOf(ConditionClear), &signal)
			assert.Equal(t, 0, got.Score, "humidity %d clouds %d", h, c)
			assert.Equal(t, AccentSevere, got.Accent)
		}
	}
}

func TestScore_Override(t *testing.T) {
	rainSignal := NewPrecipitationSignal([]PrecipitationSample{{IntensityMMPerHr: 2.5}})
	drySignal := NewPrecipitationSignal(nil)

	t.Run("radar advisory carries intensity", func(t *testing.T) {
		got := Score(clearSnapshot(40, 0), nil, &rainSignal)

		assert.Equal(t, TriggerPrecipitation, got.Trigger)
		assert.Equal(t, 2.5, got.IntensityMMPerHr)
		assert.Contains(t, got.Advisory, "2.5 mm/h")
	})

	t.Run("trace radar intensity in advisory", func(t *testing.T) {
		trace := NewPrecipitationSignal([]PrecipitationSample{{IntensityMMPerHr: 0.04}})

		got := Score(clearSnapshot(40, 0), nil, &trace)

		assert.Equal(t, TriggerPrecipitation, got.Trigger)
		assert.Contains(t, got.Advisory, "(<0.1 mm/h)")
	})

	t.Run("radar wins over current condition", func(t *testing.T) {
		current := clearSnapshot(40, 0)
		current.Condition = ConditionThunderstorm

		got := Score(current, forecastOf(ConditionRain), &rainSignal)

		assert.Equal(t, TriggerPrecipitation, got.Trigger)
	})

	t.Run("current condition wins over forecast", func(t *testing.T) {
		current := clearSnapshot(40, 0)
		current.Condition = ConditionSnow

		got := Score(current, forecastOf(ConditionRain), &drySignal)

		assert.Equal(t, TriggerCurrentCondition, got.Trigger)
		assert.Equal(t, AdvisorySevereRain, got.Advisory)
	})

	t.Run("nearest forecast point rain", func(t *testing.T) {
		got := Score(clearSnapshot(40, 0), forecastOf(ConditionDrizzle, ConditionClear), nil)

		assert.Equal(t, 0, got.Score)
		assert.Equal(t, TriggerForecastCondition, got.Trigger)
	})

	t.Run("later forecast rain does not trigger", func(t *testing.T) {
		got := Score(clearSnapshot(40, 0), forecastOf(ConditionClear, ConditionRain), nil)

		assert.Equal(t, 100, got.Score)
		assert.Equal(t, TriggerNone, got.Trigger)
	})

	t.Run("zero intensity signal is no rain", func(t *testing.T) {
		got := Score(clearSnapshot(40, 0), nil, &drySignal)
		assert.Equal(t, 100, got.Score)
	})

	t.Run("other condition never triggers", func(t *testing.T) {
		current := clearSnapshot(40, 0)
		current.Condition = ConditionOther
		got := Score(current, forecastOf(ConditionOther), nil)
		assert.Equal(t, TriggerNone, got.Trigger)
	})
}

func TestScore_Idempotent(t *testing.T) {
	signal := NewPrecipitationSignal([]PrecipitationSample{{IntensityMMPerHr: 0}})
	current := clearSnapshot(72, 44)
	forecast := forecastOf(ConditionClouds, ConditionRain)

	first := Score(current, forecast, &signal)
	second := Score(current, forecast, &signal)

	assert.Equal(t, first, second)
}

func TestBand(t *testing.T) {
	tests := []struct {
		score int
		want  Accent
	}{
		{100, AccentGood},
		{81, AccentGood},
		{80, AccentFair},
		{51, AccentFair},
		{50, AccentPoor},
		{1, AccentPoor},
		{0, AccentSevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Band(tt.score), "score %d", tt.score)
	}
}
