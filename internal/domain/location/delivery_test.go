package location

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bogotaZone = time.FixedZone("COT", -5*60*60)

func fixedClock(rfc3339 string) func() time.Time {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newTestEstimator(now string) (*Estimator, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return NewEstimator(DefaultCalendar(), bogotaZone, logger).WithClock(fixedClock(now)), hook
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, bogotaZone)
}

func TestToday_UsesStoreTimeZone(t *testing.T) {
	// 03:00 UTC on the 9th is still the evening of the 8th in Bogotá
	e, _ := newTestEstimator("2024-11-09T03:00:00Z")
	assert.Equal(t, date(2024, time.November, 8), e.Today())
}

func TestIsBusinessDay(t *testing.T) {
	e, _ := newTestEstimator("2024-11-08T12:00:00Z")

	assert.True(t, e.IsBusinessDay(date(2024, time.November, 8)))
	assert.False(t, e.IsBusinessDay(date(2024, time.November, 9)), "saturday")
	assert.False(t, e.IsBusinessDay(date(2024, time.November, 10)), "sunday")
	assert.False(t, e.IsBusinessDay(date(2024, time.November, 11)), "independencia de Cartagena")
	assert.False(t, e.IsBusinessDay(date(2025, time.December, 25)))
	assert.True(t, e.IsBusinessDay(date(2025, time.December, 26)))
}

func TestEstimateDate(t *testing.T) {
	tests := []struct {
		name string
		now  string
		days int
		want time.Time
	}{
		{"today never counts", "2024-11-13T15:00:00Z", 1, date(2024, time.November, 14)},
		{"weekend and holiday skipped", "2024-11-08T15:00:00Z", 1, date(2024, time.November, 12)},
		{"friday to monday", "2024-11-15T15:00:00Z", 1, date(2024, time.November, 18)},
		{"zero days is today", "2024-11-08T15:00:00Z", 0, date(2024, time.November, 8)},
		{"starting on a saturday", "2024-11-09T15:00:00Z", 2, date(2024, time.November, 13)},
		{"crosses into next year", "2024-12-30T15:00:00Z", 2, date(2025, time.January, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEstimator(tt.now)
			assert.Equal(t, tt.want, e.EstimateDate(tt.days))
		})
	}
}

func TestEstimate_UsesUpperBound(t *testing.T) {
	e, _ := newTestEstimator("2024-11-08T15:00:00Z")
	bogota, ok := DefaultTable().Lookup("bogota")
	require.True(t, ok)

	est := e.Estimate(bogota)
	assert.Equal(t, 6, est.MinDays)
	assert.Equal(t, 9, est.MaxDays)
	assert.Equal(t, date(2024, time.November, 22), est.Date)
	assert.Equal(t, "viernes, 22 de noviembre de 2024", est.DateText)
}

func TestEstimate_WarnsOncePerUncoveredYear(t *testing.T) {
	e, hook := newTestEstimator("2031-03-02T15:00:00Z")

	e.EstimateDate(3)
	e.EstimateDate(5)

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
			assert.Equal(t, 2031, entry.Data["year"])
		}
	}
	assert.Equal(t, 1, warnings)
	assert.Equal(t, date(2031, time.March, 5), e.EstimateDate(3))
}

func TestFormatLongDate(t *testing.T) {
	assert.Equal(t, "martes, 12 de noviembre de 2024", FormatLongDate(date(2024, time.November, 12)))
	assert.Equal(t, "miércoles, 1 de enero de 2025", FormatLongDate(date(2025, time.January, 1)))
	assert.Equal(t, "sábado, 20 de julio de 2024", FormatLongDate(date(2024, time.July, 20)))
}

func TestLoadCalendarFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
holidays:
  "2031":
    - "2031-03-03"
`), 0o644))

	cal, err := LoadCalendarFile(path)
	require.NoError(t, err)
	assert.True(t, cal.Covers(2031))
	assert.False(t, cal.Covers(2024))
	assert.True(t, cal.IsHoliday(date(2031, time.March, 3)))

	logger, _ := logtest.NewNullLogger()
	e := NewEstimator(cal, bogotaZone, logger).WithClock(fixedClock("2031-02-28T15:00:00Z"))
	assert.Equal(t, date(2031, time.March, 4), e.EstimateDate(1))
}

func TestLoadCalendarFile_RejectsMisfiledDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
holidays:
  "2031": ["2030-12-25"]
`), 0o644))

	_, err := LoadCalendarFile(path)
	assert.Error(t, err)

	_, err = NewStaticCalendar("2031-13-01")
	assert.Error(t, err)
}
