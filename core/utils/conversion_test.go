package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want int
	}{
		{"Int", 5, 5},
		{"Int64", int64(7), 7},
		{"Float", 3.9, 3},
		{"String", " 42 ", 42},
		{"Bytes", []byte("12"), 12},
		{"Garbage", "abc", 0},
		{"Nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.val))
		})
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want bool
	}{
		{"True", true, true},
		{"One", 1, true},
		{"Zero", 0, false},
		{"StringTrue", "TRUE", true},
		{"StringYes", "yes", true},
		{"StringOff", "off", false},
		{"Empty", "", false},
		{"Bytes", []byte("1"), true},
		{"Other", 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBool(tt.val))
		})
	}
}
