package callbacks

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		data    string
		action  string
		payload string
	}{
		{data: "show|null", action: "show", payload: "null"},
		{data: "addlist", action: "addlist"},
		{data: "\fdeletetask|abc", action: "deletetask", payload: "abc"},
		{data: "a|b|c", action: "a", payload: "b|c"},
		{data: "", action: ""},
	}
	for _, tt := range tests {
		action, payload := Parse(tt.data)
		assert.Equal(t, tt.action, action, tt.data)
		assert.Equal(t, tt.payload, payload, tt.data)
	}
}

func TestDataRoundTripsListID(t *testing.T) {
	id := uuid.New()

	action, payload := Parse(Data(ActionShow, ListID(&id)))
	assert.Equal(t, ActionShow, action)
	got, err := PayloadOptionalUUID(payload)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	_, payload = Parse(Data(ActionShow, ListID(nil)))
	got, err = PayloadOptionalUUID(payload)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, "skip", Data(ActionSkip))
}

func TestPayloadUUIDRejectsGarbage(t *testing.T) {
	_, err := PayloadUUID("not-a-uuid")
	assert.Error(t, err)
	_, err = PayloadOptionalUUID("nope")
	assert.Error(t, err)
}
