package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantrack/server/internal/model"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "ABC", EscapeLike("ABC"))
	assert.Equal(t, `50\%`, EscapeLike("50%"))
	assert.Equal(t, `A\_B`, EscapeLike("A_B"))
	assert.Equal(t, `C:\\X`, EscapeLike(`C:\X`))
}

func TestApplySighting_FirstSighting(t *testing.T) {
	at := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	v := ApplySighting(model.Vehicle{ID: 1}, at)

	require.NotNil(t, v.LastSeen)
	assert.True(t, v.LastSeen.Equal(at))
	assert.Nil(t, v.PreviousSeen)
}

func TestApplySighting_ShiftsLastSeen(t *testing.T) {
	t1 := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(3*time.Hour + 45*time.Minute)
	v := ApplySighting(model.Vehicle{ID: 1, LastSeen: &t1}, t2)

	require.NotNil(t, v.PreviousSeen)
	assert.True(t, v.PreviousSeen.Equal(t1))
	assert.True(t, v.LastSeen.Equal(t2))
}

func TestMatchesFilter(t *testing.T) {
	resp := "Lucía Pérez"
	v := model.Vehicle{Plate: "5545JKZ", DriverName: "Mario Ruiz", ResponsibleName: &resp}

	assert.True(t, MatchesFilter(v, ""))
	assert.True(t, MatchesFilter(v, "jkz"))
	assert.True(t, MatchesFilter(v, "mario"))
	assert.True(t, MatchesFilter(v, "PÉREZ"))
	assert.False(t, MatchesFilter(v, "zzz"))
	assert.False(t, MatchesFilter(model.Vehicle{Plate: "X", DriverName: "Y"}, "lucía"))
}
