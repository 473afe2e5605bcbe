package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/laundry-alert/internal/domain"
)

//go:embed templates/report.html.tmpl
var defaultTemplates embed.FS

const defaultTemplateName = "templates/report.html.tmpl"

// DefaultMaxRows bounds the forecast table.
const DefaultMaxRows = 8

// Render stages reported in RenderError.
const (
	StageReadTemplate  = "read_template"
	StageParseTemplate = "parse_template"
	StageExecute       = "execute"
	StageWrite         = "write"
)

const (
	placeholderText  = "No forecast data"
	noDataNotice     = "Weather data is unavailable for every area. Values shown are defaults."
	degradedNotice   = "Some weather sources failed. Affected areas are marked as partial data."
	updatedAtLayout  = "2006-01-02 15:04 MST"
	forecastAtLayout = "Mon 15:04"
)

var accentColors = map[domain.Accent]string{
	domain.AccentGood:   "#2e7d32",
	domain.AccentFair:   "#f9a825",
	domain.AccentPoor:   "#ef6c00",
	domain.AccentSevere: "#c62828",
}

var conditionIcons = map[domain.Condition]string{
	domain.ConditionClear:        "☀️",
	domain.ConditionClouds:       "☁️",
	domain.ConditionRain:         "🌧",
	domain.ConditionDrizzle:      "🌦",
	domain.ConditionSnow:         "❄️",
	domain.ConditionThunderstorm: "⛈",
	domain.ConditionOther:        "🌫",
}

// Fields is the complete set of values a report template may reference.
// Templates referencing anything else fail to execute.
type Fields struct {
	UpdatedAt    string
	Area         string
	Score        int
	Status       string
	Advisory     string
	Accent       string
	AccentColor  string
	Temperature  string
	Humidity     int
	Clouds       int
	Notice       string
	ForecastRows []ForecastRow
	AreaRows     []AreaRow
}

// ForecastRow is one line of the forecast table.
type ForecastRow struct {
	Time          string
	Icon          string
	Condition     string
	Temperature   string
	Precipitation string
	Placeholder   bool
}

// AreaRow summarizes one monitored area.
type AreaRow struct {
	Name        string
	Score       int
	Status      string
	AccentColor string
	Degraded    bool
}

// Renderer turns a run's readings into a static HTML document.
type Renderer struct {
	tmpl    *template.Template
	maxRows int
	zone    *time.Location
}

// NewRenderer parses the template at path, or the embedded default when path
// is empty. Times are displayed in zone.
func NewRenderer(path string, maxRows int, zone *time.Location) (*Renderer, error) {
	var (
		src []byte
		err error
	)
	if path == "" {
		src, err = defaultTemplates.ReadFile(defaultTemplateName)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &domain.RenderError{Stage: StageReadTemplate, Err: err}
	}

	tmpl, err := template.New("report").Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, &domain.RenderError{Stage: StageParseTemplate, Err: err}
	}

	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if zone == nil {
		zone = time.UTC
	}
	return &Renderer{tmpl: tmpl, maxRows: maxRows, zone: zone}, nil
}

// Render produces the report for readings at time now. The headline is the
// lowest-scoring area, first configured on ties.
func (r *Renderer) Render(readings []domain.Reading, now time.Time) ([]byte, error) {
	fields := r.Fields(readings, now)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, fields); err != nil {
		return nil, &domain.RenderError{Stage: StageExecute, Err: err}
	}
	return buf.Bytes(), nil
}

// Fields builds the template values for readings. With no readings at all
// it returns neutral defaults and a placeholder forecast row.
func (r *Renderer) Fields(readings []domain.Reading, now time.Time) Fields {
	headline := headlineReading(readings)

	f := Fields{
		UpdatedAt:    now.In(r.zone).Format(updatedAtLayout),
		Area:         headline.Location.Name,
		Score:        headline.Result.Score,
		Status:       headline.Result.Status,
		Advisory:     headline.Result.Advisory,
		Accent:       accentTag(headline.Result.Accent),
		AccentColor:  accentColor(headline.Result.Accent),
		Temperature:  formatFloat(headline.Current.TemperatureC),
		Humidity:     headline.Current.HumidityPct,
		Clouds:       headline.Current.CloudCoverPct,
		ForecastRows: r.forecastRows(headline.Forecast),
		AreaRows:     areaRows(readings),
		Notice:       notice(readings),
	}
	return f
}

func (r *Renderer) forecastRows(series domain.ForecastSeries) []ForecastRow {
	if len(series) == 0 {
		return []ForecastRow{{Condition: placeholderText, Placeholder: true}}
	}
	n := min(len(series), r.maxRows)
	rows := make([]ForecastRow, 0, n)
	for _, p := range series[:n] {
		condition := p.Description
		if condition == "" {
			condition = string(p.Condition)
		}
		rows = append(rows, ForecastRow{
			Time:          p.At.In(r.zone).Format(forecastAtLayout),
			Icon:          conditionIcon(p.Condition),
			Condition:     condition,
			Temperature:   formatFloat(p.TemperatureC),
			Precipitation: formatFloat(p.PrecipitationMM3h),
		})
	}
	return rows
}

func headlineReading(readings []domain.Reading) domain.Reading {
	if len(readings) == 0 {
		return neutralReading()
	}
	worst := readings[0]
	for _, rd := range readings[1:] {
		if rd.Result.Score < worst.Result.Score {
			worst = rd
		}
	}
	return worst
}

// neutralReading is what the report shows when there is nothing to show.
func neutralReading() domain.Reading {
	current := domain.WeatherSnapshot{
		TemperatureC:  domain.DefaultTemperatureC,
		HumidityPct:   domain.DefaultHumidityPct,
		CloudCoverPct: domain.DefaultCloudCoverPct,
		Condition:     domain.ConditionOther,
	}
	return domain.Reading{
		Location: domain.Location{Name: "No data"},
		Current:  current,
		Result:   domain.Score(current, nil, nil),
	}
}

func areaRows(readings []domain.Reading) []AreaRow {
	rows := make([]AreaRow, 0, len(readings))
	for _, rd := range readings {
		rows = append(rows, AreaRow{
			Name:        rd.Location.Name,
			Score:       rd.Result.Score,
			Status:      rd.Result.Status,
			AccentColor: accentColor(rd.Result.Accent),
			Degraded:    rd.Degraded(),
		})
	}
	return rows
}

func notice(readings []domain.Reading) string {
	if len(readings) == 0 {
		return noDataNotice
	}
	anyCurrent, anyDegraded := false, false
	for _, rd := range readings {
		anyCurrent = anyCurrent || rd.HasCurrent
		anyDegraded = anyDegraded || rd.Degraded()
	}
	switch {
	case !anyCurrent:
		return noDataNotice
	case anyDegraded:
		return degradedNotice
	default:
		return ""
	}
}

func accentTag(a domain.Accent) string {
	if a == "" {
		return "unknown"
	}
	return string(a)
}

func accentColor(a domain.Accent) string {
	if c, ok := accentColors[a]; ok {
		return c
	}
	return "#616161"
}

func conditionIcon(c domain.Condition) string {
	if icon, ok := conditionIcons[c]; ok {
		return icon
	}
	return conditionIcons[domain.ConditionOther]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// WriteFile replaces the document at path atomically: readers see either the
// previous report or the new one, never a partial write.
func WriteFile(path string, doc []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &domain.RenderError{Stage: StageWrite, Err: err}
	}
	tmpName := tmp.Name()

	if err := writeAndClose(tmp, doc); err != nil {
		_ = os.Remove(tmpName)
		return &domain.RenderError{Stage: StageWrite, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &domain.RenderError{Stage: StageWrite, Err: fmt.Errorf("replace %s: %w", path, err)}
	}
	return nil
}

func writeAndClose(f *os.File, doc []byte) error {
	_, writeErr := f.Write(doc)
	syncErr := f.Sync()
	chmodErr := f.Chmod(0o644)
	closeErr := f.Close()
	return errors.Join(writeErr, syncErr, chmodErr, closeErr)
}
