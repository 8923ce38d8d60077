package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString(t *testing.T) {
	var payload struct {
		A flexString  `json:"a"`
		B flexString  `json:"b"`
		C *flexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":" 42 ","b":12.5,"c":null}`), &payload))

	n, err := payload.A.Int()
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	f, err := payload.B.Float()
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)
	assert.Nil(t, payload.C)

	_, err = flexString("NaN").Float()
	assert.ErrorIs(t, err, errNotNumber)
	_, err = flexString("-1").Int()
	assert.ErrorIs(t, err, errNotInteger)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &payload))
}

func TestCSVList(t *testing.T) {
	var payload struct {
		FromString csvList `json:"s"`
		FromArray  csvList `json:"a"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"Go, SQL,, Docker ","a":["Go "," ","Rust"]}`), &payload))
	assert.Equal(t, csvList{"Go", "SQL", "Docker"}, payload.FromString)
	assert.Equal(t, csvList{"Go", "Rust"}, payload.FromArray)

	assert.Equal(t, csvList{"Go", "SQL", "Rust"}, csvList{"Go, SQL", " Rust ", ""}.normalize())
	assert.Empty(t, csvList{" , "}.normalize())
}

func TestBlank(t *testing.T) {
	assert.False(t, blank("a", "b"))
	assert.True(t, blank("a", "  "))
	assert.False(t, blank())
}
