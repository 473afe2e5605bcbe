package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/laundry-alert/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 4, 26, 6, 0, 0, 0, time.UTC)

func testRenderer(t *testing.T, maxRows int) *Renderer {
	t.Helper()
	r, err := NewRenderer("", maxRows, time.FixedZone("JST", 9*60*60))
	require.NoError(t, err)
	return r
}

func reading(name string, humidity int, condition domain.Condition, forecast domain.ForecastSeries) domain.Reading {
	current := domain.WeatherSnapshot{
		TemperatureC:  21.5,
		HumidityPct:   humidity,
		CloudCoverPct: 10,
		Condition:     condition,
		ObservedAt:    testNow,
	}
	return domain.Reading{
		Location:   domain.Location{Name: name},
		Current:    current,
		HasCurrent: true,
		Forecast:   forecast,
		Result:     domain.Score(current, forecast, nil),
	}
}

func series(n int) domain.ForecastSeries {
	s := make(domain.ForecastSeries, n)
	for i := range s {
		s[i] = domain.ForecastPoint{
			At:                testNow.Add(time.Duration(i) * 3 * time.Hour),
			TemperatureC:      float64(20 + i),
			Condition:         domain.ConditionClouds,
			PrecipitationMM3h: 0,
		}
	}
	return s
}

func TestRender_EmptyForecastRendersPlaceholder(t *testing.T) {
	r := testRenderer(t, 0)

	doc, err := r.Render([]domain.Reading{reading("Suginami Central", 40, domain.ConditionClear, nil)}, testNow)
	require.NoError(t, err)

	html := string(doc)
	assert.Contains(t, html, placeholderText)
	assert.Equal(t, 1, strings.Count(html, `class="placeholder"`))
	assert.NotContains(t, html, "{{")
	assert.Contains(t, html, "Suginami Central")
	assert.Contains(t, html, "2024-04-26 15:00 JST")
}

func TestRender_NoReadingsStillRenders(t *testing.T) {
	doc, err := testRenderer(t, 0).Render(nil, testNow)
	require.NoError(t, err)

	html := string(doc)
	assert.Contains(t, html, placeholderText)
	assert.Contains(t, html, "Humidity 50%")
	assert.Contains(t, html, noDataNotice)
}

func TestFields_RowsCappedAndChronological(t *testing.T) {
	r := testRenderer(t, 4)

	f := r.Fields([]domain.Reading{reading("Suginami South", 40, domain.ConditionClear, series(10))}, testNow)

	require.Len(t, f.ForecastRows, 4)
	assert.Equal(t, "Fri 15:00", f.ForecastRows[0].Time)
	assert.Equal(t, "Fri 18:00", f.ForecastRows[1].Time)
	assert.Equal(t, "20.0", f.ForecastRows[0].Temperature)
	assert.Equal(t, "☁️", f.ForecastRows[0].Icon)
	assert.False(t, f.ForecastRows[0].Placeholder)
}

func TestFields_DefaultMaxRows(t *testing.T) {
	f := testRenderer(t, 0).Fields([]domain.Reading{reading("A", 40, domain.ConditionClear, series(20))}, testNow)
	assert.Len(t, f.ForecastRows, DefaultMaxRows)
}

func TestFields_HeadlineIsWorstArea(t *testing.T) {
	good := reading("Suginami North West", 40, domain.ConditionClear, nil)
	severe := reading("Suginami South", 70, domain.ConditionRain, nil)
	alsoSevere := reading("Suginami Central", 90, domain.ConditionSnow, nil)

	f := testRenderer(t, 0).Fields([]domain.Reading{good, severe, alsoSevere}, testNow)

	assert.Equal(t, "Suginami South", f.Area)
	assert.Equal(t, 0, f.Score)
	assert.Equal(t, "Severe", f.Accent)
	assert.Equal(t, "#c62828", f.AccentColor)
	require.Len(t, f.AreaRows, 3)
	assert.Equal(t, "Suginami North West", f.AreaRows[0].Name)
	assert.Equal(t, "#2e7d32", f.AreaRows[0].AccentColor)
}

func TestFields_Notice(t *testing.T) {
	r := testRenderer(t, 0)

	ok := reading("A", 40, domain.ConditionClear, nil)
	assert.Empty(t, r.Fields([]domain.Reading{ok}, testNow).Notice)

	degraded := ok
	degraded.DegradedSources = []string{"yolp"}
	f := r.Fields([]domain.Reading{degraded}, testNow)
	assert.Equal(t, degradedNotice, f.Notice)
	assert.True(t, f.AreaRows[0].Degraded)

	noCurrent := degraded
	noCurrent.HasCurrent = false
	assert.Equal(t, noDataNotice, r.Fields([]domain.Reading{noCurrent}, testNow).Notice)
}

func TestRender_EscapesAreaNames(t *testing.T) {
	doc, err := testRenderer(t, 0).Render([]domain.Reading{reading("<b>Koenji</b>", 40, domain.ConditionClear, nil)}, testNow)
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "<b>Koenji</b>")
	assert.Contains(t, string(doc), "&lt;b&gt;Koenji&lt;/b&gt;")
}

func TestNewRenderer_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Area}}={{.Score}} {{range .ForecastRows}}[{{.Condition}}]{{end}}`), 0o600))

	r, err := NewRenderer(path, 8, time.UTC)
	require.NoError(t, err)

	doc, err := r.Render([]domain.Reading{reading("Koenji", 85, domain.ConditionClear, nil)}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Koenji=47 [No forecast data]", string(doc))
}

func TestNewRenderer_UnreadableTemplate(t *testing.T) {
	_, err := NewRenderer(filepath.Join(t.TempDir(), "missing.tmpl"), 8, time.UTC)

	var re *domain.RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, StageReadTemplate, re.Stage)
}

func TestNewRenderer_InvalidTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Area`), 0o600))

	_, err := NewRenderer(path, 8, time.UTC)

	var re *domain.RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, StageParseTemplate, re.Stage)
}

func TestRender_UndeclaredFieldFailsLoudly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Area}} {{.WindChill}}`), 0o600))
	r, err := NewRenderer(path, 8, time.UTC)
	require.NoError(t, err)

	_, err = r.Render([]domain.Reading{reading("Koenji", 40, domain.ConditionClear, nil)}, testNow)

	var re *domain.RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, StageExecute, re.Stage)
}

func TestWriteFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte("old report"), 0o644))

	require.NoError(t, WriteFile(path, []byte("new report")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new report", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "index.html"), []byte("x"))

	var re *domain.RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, StageWrite, re.Stage)
}
