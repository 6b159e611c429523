package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/location"
)

func TestParseCoordinate(t *testing.T) {
	t.Run("Успех", func(t *testing.T) {
		c, err := location.ParseCoordinate(" 41.0082 , 28.9784 ")
		require.NoError(t, err)
		assert.InDelta(t, 41.0082, c.Latitude, 1e-9)
		assert.InDelta(t, 28.9784, c.Longitude, 1e-9)
	})

	for _, value := range []string{"", "41.0", "a,b", "91,0", "0,181"} {
		t.Run("Ошибка "+value, func(t *testing.T) {
			_, err := location.ParseCoordinate(value)
			assert.ErrorIs(t, err, location.ErrInvalidCoordinate)
		})
	}
}

func TestDistance(t *testing.T) {
	istanbul := location.Coordinate{Latitude: 41.0082, Longitude: 28.9784}
	ankara := location.Coordinate{Latitude: 39.9334, Longitude: 32.8597}

	assert.InDelta(t, 0, location.Distance(istanbul, istanbul), 1e-9)
	assert.InDelta(t, 350, location.Distance(istanbul, ankara), 5)
	assert.InDelta(t, location.Distance(istanbul, ankara), location.Distance(ankara, istanbul), 1e-9)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "850 m", location.FormatDistance(0.85))
	assert.Equal(t, "2.4 km", location.FormatDistance(2.4))
	assert.Equal(t, "1.0 km", location.FormatDistance(1))
}

func TestProviders(t *testing.T) {
	c := location.Coordinate{Latitude: 1, Longitude: 2}

	got, ok := location.NewStatic(c).Current()
	assert.True(t, ok)
	assert.Equal(t, c, got)

	var settable location.Settable
	_, ok = settable.Current()
	assert.False(t, ok, "Нулевое значение не знает местоположения")

	settable.Set(c)
	got, ok = settable.Current()
	assert.True(t, ok)
	assert.Equal(t, c, got)

	settable.Reset()
	_, ok = settable.Current()
	assert.False(t, ok)
}
