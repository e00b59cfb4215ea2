package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDIntReadsLeadingDigits(t *testing.T) {
	cases := map[ID]int{
		"37":     37,
		" 38":    38,
		"37.0":   37,
		"3f2a9c": 3,
		"-5":     -5,
		"abc":    0,
		"":       0,
		"+":      0,
	}
	for id, want := range cases {
		assert.Equal(t, want, id.Int(), string(id))
	}
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":37,"b":"3f2a9c"}`), &v))
	assert.Equal(t, ID("37"), v.A)
	assert.Equal(t, ID("3f2a9c"), v.B)
}
