package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Madrid", "Madrid"},
		{"bytes", []byte("77311000"), "77311000"},
		{"time", time.Date(2023, 5, 10, 14, 0, 0, 0, time.UTC), "2023-05-10"},
		{"float", 240000.50, "240000.5"},
		{"float no trailing zeros", 240000.0, "240000"},
		{"int64", int64(42), "42"},
		{"int32", int32(7), "7"},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderValue(tt.in))
		})
	}
}
