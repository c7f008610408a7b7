package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: ""},
		{name: "text", input: "Monaco Grand Prix", expected: "Monaco Grand Prix"},
		{name: "whole float", input: 25.0, expected: "25.00"},
		{name: "fraction rounds", input: 1.005e1, expected: "10.05"},
		{name: "negative float", input: -2.333, expected: "-2.33"},
		{name: "nan", input: math.NaN(), expected: ""},
		{name: "infinity", input: math.Inf(1), expected: ""},
		{name: "int", input: 2021, expected: "2021"},
		{name: "int64", input: int64(-7), expected: "-7"},
		{name: "bool", input: true, expected: "true"},
		{name: "other", input: uint8(3), expected: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatCell(tt.input))
		})
	}
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
}
