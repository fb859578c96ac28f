package store

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-probability/internal/weather"
)

var (
	paris = weather.Location{Name: "Paris, França", Latitude: 48.8566, Longitude: 2.3522}
	cairo = weather.Location{Name: "Cairo, Egito", Latitude: 30.0444, Longitude: 31.2357}
	lima  = weather.Location{Name: "Lima", Latitude: -12.0464, Longitude: -77.0428}
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)
	s.Save("  Paris  ", paris)

	got, err := s.Get("paris")
	require.NoError(t, err)
	assert.Equal(t, paris, got)

	_, err = s.Get("london")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_IgnoresBlankQuery(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.Save("   ", paris)
	assert.Zero(t, s.Len())
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewMemoryStoreWithClock(2, 0, clock)

	s.Save("paris", paris)
	clock.Advance(time.Second)
	s.Save("cairo", cairo)
	clock.Advance(time.Second)
	s.Save("lima", lima)

	assert.Equal(t, 2, s.Len())
	_, err := s.Get("paris")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("lima")
	assert.NoError(t, err)
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewMemoryStoreWithClock(0, time.Hour, clock)

	s.Save("paris", paris)
	clock.Advance(30 * time.Minute)
	s.Save("cairo", cairo)
	clock.Advance(45 * time.Minute)

	_, err := s.Get("paris")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("cairo")
	assert.NoError(t, err)

	assert.Equal(t, 1, s.EvictExpired())
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_OverwriteRefreshes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewMemoryStoreWithClock(0, time.Hour, clock)

	s.Save("lima", lima)
	clock.Advance(50 * time.Minute)
	s.Save("Lima", lima)
	clock.Advance(50 * time.Minute)

	_, err := s.Get("lima")
	assert.NoError(t, err)
}
