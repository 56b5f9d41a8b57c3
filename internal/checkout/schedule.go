package checkout

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	NoSlotMessage = "Nenhum horário disponível para esta data. Escolha outra data."
)

var weekdayShort = [...]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"}

// Schedule gera as datas e horários de entrega agendada.
type Schedule struct {
	Days         int
	IncludeToday bool
	Slots        []string // "HH:MM", em ordem
	Buffer       time.Duration
	Location     *time.Location
}

type Day struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Availability é o que o formulário mostra para uma data escolhida.
type Availability struct {
	Date          string `json:"date"`
	Slots         []Slot `json:"slots"`
	SubmitEnabled bool   `json:"submit_enabled"`
	Message       string `json:"message,omitempty"`
}

func (s Schedule) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// AvailableDates devolve os próximos Days dias úteis, a partir de amanhã (ou
// de hoje, com IncludeToday).
func (s Schedule) AvailableDates(now time.Time) []Day {
	now = now.In(s.loc())
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc())
	if !s.IncludeToday {
		day = day.AddDate(0, 0, 1)
	}
	out := make([]Day, 0, s.Days)
	for len(out) < s.Days {
		if !isWeekend(day) {
			out = append(out, Day{
				Date:  day.Format(DateLayout),
				Label: fmt.Sprintf("%s, %s", weekdayShort[day.Weekday()], day.Format("02/01")),
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func (s Schedule) offersDate(date string, now time.Time) bool {
	for _, d := range s.AvailableDates(now) {
		if d.Date == date {
			return true
		}
	}
	return false
}

// SlotsFor marca cada horário; no próprio dia só vale o que estiver a mais de
// Buffer de agora.
func (s Schedule) SlotsFor(date string, now time.Time) ([]Slot, error) {
	day, err := time.ParseInLocation(DateLayout, date, s.loc())
	if err != nil {
		return nil, fmt.Errorf("data inválida: %q", date)
	}
	now = now.In(s.loc())
	offered := s.offersDate(date, now)

	out := make([]Slot, 0, len(s.Slots))
	for _, hhmm := range s.Slots {
		clock, err := time.Parse(TimeLayout, hhmm)
		if err != nil {
			continue
		}
		at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, s.loc())
		out = append(out, Slot{Time: hhmm, Available: offered && at.Sub(now) > s.Buffer})
	}
	return out, nil
}

func (s Schedule) Availability(date string, now time.Time) (Availability, error) {
	slots, err := s.SlotsFor(date, now)
	if err != nil {
		return Availability{}, err
	}
	a := Availability{Date: date, Slots: slots}
	for _, sl := range slots {
		if sl.Available {
			a.SubmitEnabled = true
			break
		}
	}
	if !a.SubmitEnabled {
		a.Message = NoSlotMessage
	}
	return a, nil
}

func (s Schedule) slotAvailable(date, hhmm string, now time.Time) bool {
	slots, err := s.SlotsFor(date, now)
	if err != nil {
		return false
	}
	for _, sl := range slots {
		if sl.Time == hhmm {
			return sl.Available
		}
	}
	return false
}
