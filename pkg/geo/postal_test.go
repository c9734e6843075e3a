package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"98229", "98229", true},
		{" 98229 ", "98229", true},
		{"98229-1234", "98229", true},
		{"982291234", "98229", true},
		{"982 29", "98229", true},
		{"2139", "02139", true},
		{"Everett", "", false},
		{"9822A", "", false},
		{"", "", false},
		{"-1234", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizePostalCode(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterPostalTable(t *testing.T) {
	table, dropped := FilterPostalTable(map[string]Coordinates{
		"98229": {Latitude: 48.75, Longitude: -122.47},
		"00000": {Latitude: 123, Longitude: 0},
		"abcde": {Latitude: 1, Longitude: 1},
		"2139":  {Latitude: 42.36, Longitude: -71.10},
	})

	assert.Equal(t, 2, dropped)
	assert.Len(t, table, 2)
	assert.Contains(t, table, "02139")
}
