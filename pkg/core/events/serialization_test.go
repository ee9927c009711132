package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, ev Event)
		wantErr bool
	}{
		{
			name:    "text message content",
			payload: `{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"hi"}`,
			check: func(t *testing.T, ev Event) {
				content, ok := ev.(*TextMessageContentEvent)
				require.True(t, ok)
				assert.Equal(t, "m1", content.MessageID)
				assert.Equal(t, "hi", content.Delta)
			},
		},
		{
			name:    "run error with code",
			payload: `{"type":"RUN_ERROR","message":"boom","code":"E42"}`,
			check: func(t *testing.T, ev Event) {
				runErr, ok := ev.(*RunErrorEvent)
				require.True(t, ok)
				assert.Equal(t, "boom", runErr.Message)
				require.NotNil(t, runErr.Code)
				assert.Equal(t, "E42", *runErr.Code)
			},
		},
		{
			name:    "state delta",
			payload: `{"type":"STATE_DELTA","delta":[{"op":"add","path":"/a","value":1}]}`,
			check: func(t *testing.T, ev Event) {
				delta, ok := ev.(*StateDeltaEvent)
				require.True(t, ok)
				require.Len(t, delta.Delta, 1)
				assert.Equal(t, "add", delta.Delta[0].Op)
			},
		},
		{
			name:    "custom event",
			payload: `{"type":"CUSTOM","name":"a2ui","value":{"surface":"s1"}}`,
			check: func(t *testing.T, ev Event) {
				custom, ok := ev.(*CustomEvent)
				require.True(t, ok)
				assert.Equal(t, "a2ui", custom.Name)
			},
		},
		{
			name:    "unknown type",
			payload: `{"type":"NOT_A_THING"}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			payload: `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := EventFromJSON([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, ev)
		})
	}
}

func TestJSONPatchOperationValidate(t *testing.T) {
	assert.NoError(t, JSONPatchOperation{Op: "add", Path: "/a", Value: 1}.Validate())
	assert.Error(t, JSONPatchOperation{Op: "frobnicate", Path: "/a"}.Validate())
	assert.Error(t, JSONPatchOperation{Op: "move", Path: "/a"}.Validate())
	assert.NoError(t, JSONPatchOperation{Op: "move", Path: "/a", From: "/b"}.Validate())
}
