package domain

import (
	"fmt"
	"strings"
	"time"
)

// Decide produces the alert verdict for one area. An area is severe exactly
// when its score landed in the Severe band. Forecast times in the reason are
// shown in zone; a nil zone means UTC.
func Decide(loc Location, result ScoreResult, current WeatherSnapshot, nearest *ForecastPoint, zone *time.Location) AreaAlert {
	alert := AreaAlert{Location: loc, Severe: result.Accent == AccentSevere}
	if !alert.Severe {
		return alert
	}

	switch result.Trigger {
	case TriggerPrecipitation:
		alert.Reason = FormatIntensity(result.IntensityMMPerHr) + " mm/h on radar"
	case TriggerCurrentCondition:
		alert.Reason = describe(current.Condition, current.Description)
	case TriggerForecastCondition:
		if nearest != nil {
			if zone == nil {
				zone = time.UTC
			}
			alert.Reason = fmt.Sprintf("%s expected around %s",
				describe(nearest.Condition, nearest.Description), nearest.At.In(zone).Format("15:04"))
		}
	}
	if alert.Reason == "" {
		alert.Reason = "rain detected"
	}
	return alert
}

// BuildAlert aggregates per-area verdicts. The run notifies when any area is
// severe, and the message names only the severe areas.
func BuildAlert(alerts []AreaAlert, reportURL string) AlertDecision {
	var severe []AreaAlert
	for _, a := range alerts {
		if a.Severe {
			severe = append(severe, a)
		}
	}
	if len(severe) == 0 {
		return AlertDecision{}
	}

	var b strings.Builder
	b.WriteString("Laundry alert: rain in your area.\n")
	areas := make([]string, 0, len(severe))
	for _, a := range severe {
		areas = append(areas, a.Location.Name)
		fmt.Fprintf(&b, "・%s (%s)\n", a.Location.Name, a.Reason)
	}
	b.WriteString("Bring your laundry in.")
	if reportURL != "" {
		fmt.Fprintf(&b, "\nDetails: %s", reportURL)
	}

	return AlertDecision{
		ShouldNotify: true,
		Message:      b.String(),
		Areas:        areas,
	}
}

func describe(c Condition, description string) string {
	if description != "" {
		return description
	}
	return strings.ToLower(string(c))
}

// FormatIntensity renders a rainfall rate with one decimal. Rates too small to
// show at that precision render as "<0.1" rather than "0.0".
func FormatIntensity(mmPerHr float64) string {
	if mmPerHr > 0 && mmPerHr < 0.05 {
		return "<0.1"
	}
	return fmt.Sprintf("%.1f", mmPerHr)
}
