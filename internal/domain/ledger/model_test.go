package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/id"
)

func TestEffect(t *testing.T) {
	assert.Equal(t, int64(5), Entry{Type: MoveIn, Quantity: 5}.Effect())
	assert.Equal(t, int64(-5), Entry{Type: MoveOut, Quantity: 5}.Effect())
}

func TestFilterMatch(t *testing.T) {
	mat := id.New()
	other := id.New()
	day := func(s string) time.Time {
		d, err := ParseDate(s)
		require.NoError(t, err)
		return d
	}
	e := Entry{MaterialID: mat, Group: catalog.GroupElectrical, Date: day("2024-03-31")}

	assert.True(t, Filter{}.Match(e))
	assert.True(t, Filter{Year: 2024, Month: 3}.Match(e))
	assert.False(t, Filter{Year: 2024, Month: 4}.Match(e))
	assert.True(t, Filter{Year: 2024}.Match(e))
	assert.False(t, Filter{Year: 2023}.Match(e))
	assert.False(t, Filter{Group: catalog.GroupAutomation}.Match(e))
	assert.True(t, Filter{MaterialID: &mat}.Match(e))
	assert.False(t, Filter{MaterialID: &other}.Match(e))

	e.Date = day("2024-04-01")
	assert.False(t, Filter{Year: 2024, Month: 3}.Match(e))
}

func TestDay(t *testing.T) {
	ts := time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-06", Day(ts).Format(DateLayout))
}
