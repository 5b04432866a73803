// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHandle(t *testing.T) {
	tests := []struct {
		in         string
		wantPrefix string
		wantCode   string
	}{
		{"Sparrow#1234", "Sparrow", "1234"},
		{"Sparrow", "Sparrow", ""},
		{"#1234", "", "1234"},
		{"Two Words#0042", "Two Words", "0042"},
		{"a#b#c", "a", "b#c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			prefix, code := SplitHandle(tt.in)
			assert.Equal(t, tt.wantPrefix, prefix)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "42", NormalizeCode("0042"))
	assert.Equal(t, "1234", NormalizeCode("1234"))
	assert.Equal(t, "100", NormalizeCode("0100"))
	assert.Equal(t, "", NormalizeCode("0000"))
}

func TestParseHandle(t *testing.T) {
	h, err := ParseHandle("Sparrow#0042")
	require.NoError(t, err)
	assert.Equal(t, Handle{Prefix: "Sparrow", Code: "42"}, h)
	assert.Equal(t, "Sparrow#42", h.String())

	for _, bad := range []string{"Sparrow", "Sparrow#", "#1234", "Sparrow#0000"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseHandle(bad)
			assert.ErrorIs(t, err, ErrInput)
			assert.Equal(t, "invalid name format, expected Name#1234", err.Error())
		})
	}
}
