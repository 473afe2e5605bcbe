package domain

import (
	"fmt"
	"math"
)

// Scoring constants. The humidity penalty is stepped, not proportional.
const (
	BaseScore = 100

	HumidityHighThreshold     = 80
	HumidityHighPenalty       = 50
	HumidityModerateThreshold = 60
	HumidityModeratePenalty   = 20

	CloudPenaltyPerPct = 0.3

	// Band floors are exclusive: a score must exceed the floor to qualify.
	GoodFloor = 80
	FairFloor = 50
)

// Band texts.
const (
	StatusGood   = "Perfect drying weather"
	StatusFair   = "Decent drying weather"
	StatusPoor   = "Poor drying weather"
	StatusSevere = "Rain alert"

	AdvisoryGood       = "Great day to hang laundry outside."
	AdvisoryFair       = "Laundry will dry, but it may take a while."
	AdvisoryPoor       = "Humid or overcast. Consider drying indoors."
	AdvisorySevereRain = "Rain detected. Bring laundry in now."
)

// Score computes the dryability verdict for one area. It is a pure function
// of its inputs. A nil precipitation signal is treated as no rain on radar;
// an empty forecast contributes no forecast rain.
func Score(current WeatherSnapshot, forecast ForecastSeries, precip *PrecipitationSignal) ScoreResult {
	trigger, intensity := overrideTrigger(current, forecast, precip)

	base := float64(BaseScore)
	if trigger == TriggerNone {
		base -= float64(HumidityPenalty(current.HumidityPct))
		base -= float64(current.CloudCoverPct) * CloudPenaltyPerPct
	} else {
		base = 0
	}

	score := clampScore(base)
	accent := Band(score)

	result := ScoreResult{
		Score:   score,
		Accent:  accent,
		Trigger: trigger,
	}
	switch accent {
	case AccentGood:
		result.Status, result.Advisory = StatusGood, AdvisoryGood
	case AccentFair:
		result.Status, result.Advisory = StatusFair, AdvisoryFair
	case AccentPoor:
		result.Status, result.Advisory = StatusPoor, AdvisoryPoor
	case AccentSevere:
		result.Status = StatusSevere
		result.Advisory = AdvisorySevereRain
		if trigger == TriggerPrecipitation {
			result.IntensityMMPerHr = intensity
			result.Advisory = fmt.Sprintf("Rain detected on radar (%s mm/h). Bring laundry in now.", FormatIntensity(intensity))
		}
	}
	return result
}

// HumidityPenalty returns the stepped penalty for a humidity percentage.
func HumidityPenalty(humidityPct int) int {
	switch {
	case humidityPct > HumidityHighThreshold:
		return HumidityHighPenalty
	case humidityPct > HumidityModerateThreshold:
		return HumidityModeratePenalty
	default:
		return 0
	}
}

// Band classifies a clamped score.
func Band(score int) Accent {
	switch {
	case score > GoodFloor:
		return AccentGood
	case score > FairFloor:
		return AccentFair
	case score > 0:
		return AccentPoor
	default:
		return AccentSevere
	}
}

// overrideTrigger reports which precipitation signal, if any, forces the
// score to zero. Radar wins over the current condition, which wins over the
// forecast.
func overrideTrigger(current WeatherSnapshot, forecast ForecastSeries, precip *PrecipitationSignal) (Trigger, float64) {
	if precip != nil && precip.MaxIntensityMMPerHr > 0 {
		return TriggerPrecipitation, precip.MaxIntensityMMPerHr
	}
	if current.Condition.Wet() {
		return TriggerCurrentCondition, 0
	}
	if nearest := forecast.Nearest(); nearest != nil && nearest.Condition.Wet() {
		return TriggerForecastCondition, 0
	}
	return TriggerNone, 0
}

func clampScore(v float64) int {
	r := math.Round(v)
	switch {
	case math.IsNaN(r) || r < 0:
		return 0
	case r > 100:
		return 100
	default:
		return int(r)
	}
}
