// internal/domain/location/delivery.go
package location

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DeliveryEstimate is the shopper-facing delivery promise for a department
type DeliveryEstimate struct {
	MinDays  int       `json:"min_days"`
	MaxDays  int       `json:"max_days"`
	Date     time.Time `json:"date"`
	DateText string    `json:"date_text"`
}

// Estimator walks business days forward from today
type Estimator struct {
	calendar HolidayCalendar
	loc      *time.Location
	now      func() time.Time
	logger   *logrus.Logger

	warned sync.Map // year -> struct{}
}

// NewEstimator creates an estimator in the store time zone
func NewEstimator(calendar HolidayCalendar, loc *time.Location, logger *logrus.Logger) *Estimator {
	if loc == nil {
		loc = time.UTC
	}
	return &Estimator{
		calendar: calendar,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the clock, mainly for tests
func (e *Estimator) WithClock(now func() time.Time) *Estimator {
	e.now = now
	return e
}

// Today returns the current date at midnight in the store time zone
func (e *Estimator) Today() time.Time {
	n := e.now().In(e.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, e.loc)
}

// IsBusinessDay reports whether date is a weekday that is not a holiday
func (e *Estimator) IsBusinessDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	if !e.calendar.Covers(date.Year()) {
		e.warnUncovered(date.Year())
	}
	return !e.calendar.IsHoliday(date)
}

// EstimateDate returns the date that lies businessDays business days after today.
// Today itself never counts.
func (e *Estimator) EstimateDate(businessDays int) time.Time {
	date := e.Today()
	for counted := 0; counted < businessDays; {
		date = date.AddDate(0, 0, 1)
		if e.IsBusinessDay(date) {
			counted++
		}
	}
	return date
}

// Estimate computes the delivery promise using the upper bound of the window
func (e *Estimator) Estimate(d Department) DeliveryEstimate {
	date := e.EstimateDate(d.DeliveryDays.Max)
	return DeliveryEstimate{
		MinDays:  d.DeliveryDays.Min,
		MaxDays:  d.DeliveryDays.Max,
		Date:     date,
		DateText: FormatLongDate(date),
	}
}

func (e *Estimator) warnUncovered(year int) {
	if _, loaded := e.warned.LoadOrStore(year, struct{}{}); loaded {
		return
	}
	e.logger.WithField("year", year).Warn("Holiday calendar has no data for year, counting every weekday as a business day")
}

var spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatLongDate renders t as "martes, 12 de noviembre de 2024"
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year())
}
