package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearbyLocations(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, NearbyLocations(""))
	})

	t.Run("unknown location", func(t *testing.T) {
		assert.Nil(t, NearbyLocations("Lisboa"))
	})

	t.Run("direct key match", func(t *testing.T) {
		got := NearbyLocations("Madrid")
		assert.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), 5)
		assert.Contains(t, got, "Comunidad de Madrid")
		for _, z := range got {
			assert.NotEqual(t, "madrid", strings.ToLower(z))
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, NearbyLocations("Madrid"), NearbyLocations("MADRID"))
	})

	t.Run("key inside longer string", func(t *testing.T) {
		got := NearbyLocations("Sevilla capital")
		assert.Contains(t, got, "Andalucía")
	})

	t.Run("neighbor fallback returns siblings and owner", func(t *testing.T) {
		// Segovia is only a neighbor (of Madrid), never a key.
		got := NearbyLocations("Segovia")
		assert.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), 5)
		assert.NotContains(t, got, "Segovia")
	})

	t.Run("cap at five", func(t *testing.T) {
		// Andalucía has eight neighbors.
		got := NearbyLocations("Andalucía")
		assert.Len(t, got, 5)
	})

	t.Run("no duplicates", func(t *testing.T) {
		for _, loc := range []string{"Madrid", "Valencia", "Murcia", "Aragón", "Girona"} {
			got := NearbyLocations(loc)
			seen := make(map[string]bool)
			for _, z := range got {
				assert.False(t, seen[z], "duplicate %q for %q", z, loc)
				seen[z] = true
			}
		}
	})
}

func TestIsNearby(t *testing.T) {
	assert.True(t, IsNearby("Madrid", "Toledo"))
	assert.True(t, IsNearby("Madrid", "TOLEDO"))
	assert.True(t, IsNearby("Valencia", "Alicante"))
	assert.False(t, IsNearby("Madrid", "Pontevedra"))
	assert.False(t, IsNearby("", "Toledo"))
	assert.False(t, IsNearby("Madrid", ""))
}
