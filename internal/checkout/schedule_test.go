package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableDates_SkipsWeekend(t *testing.T) {
	s := testSchedule()
	s.IncludeToday = false
	friday := time.Date(2026, 3, 6, 9, 0, 0, 0, saoPaulo)

	days := s.AvailableDates(friday)
	require.Len(t, days, 5)
	assert.Equal(t, "2026-03-09", days[0].Date)
	assert.Equal(t, "seg, 09/03", days[0].Label)
	assert.Equal(t, "2026-03-13", days[4].Date)
}

func TestAvailableDates_IncludeToday(t *testing.T) {
	days := testSchedule().AvailableDates(monday)
	assert.Equal(t, "2026-03-02", days[0].Date)

	saturday := time.Date(2026, 3, 7, 9, 0, 0, 0, saoPaulo)
	days = testSchedule().AvailableDates(saturday)
	assert.Equal(t, "2026-03-09", days[0].Date)
}

func TestSlots_AllInsideBufferDisablesSubmit(t *testing.T) {
	late := time.Date(2026, 3, 2, 17, 45, 0, 0, saoPaulo)

	a, err := testSchedule().Availability("2026-03-02", late)
	require.NoError(t, err)
	require.Len(t, a.Slots, 5)
	for _, sl := range a.Slots {
		assert.False(t, sl.Available, sl.Time)
	}
	assert.False(t, a.SubmitEnabled)
	assert.Equal(t, NoSlotMessage, a.Message)
}

func TestSlots_BufferIsStrict(t *testing.T) {
	at := time.Date(2026, 3, 2, 13, 30, 0, 0, saoPaulo)
	slots, err := testSchedule().SlotsFor("2026-03-02", at)
	require.NoError(t, err)

	got := map[string]bool{}
	for _, sl := range slots {
		got[sl.Time] = sl.Available
	}
	assert.False(t, got["10:00"])
	assert.False(t, got["14:00"], "exatamente 30 minutos não basta")
	assert.True(t, got["16:00"])
	assert.True(t, got["18:00"])
}

func TestSlots_FutureDayFullyOpen(t *testing.T) {
	a, err := testSchedule().Availability("2026-03-03", monday)
	require.NoError(t, err)
	assert.True(t, a.SubmitEnabled)
	for _, sl := range a.Slots {
		assert.True(t, sl.Available)
	}
}

func TestSlots_DateOutsideWindowClosed(t *testing.T) {
	a, err := testSchedule().Availability("2026-03-07", monday)
	require.NoError(t, err)
	assert.False(t, a.SubmitEnabled)

	_, err = testSchedule().Availability("amanhã", monday)
	assert.Error(t, err)
}
