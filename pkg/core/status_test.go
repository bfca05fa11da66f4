package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStatus_String(t *testing.T) {
	tests := []struct {
		status StepStatus
		want   string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusFailed, "failed"},
		{StatusErrored, "errored"},
		{StatusSkipped, "skipped"},
		{StatusUndefined, "undefined"},
		{StepStatus(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestStepStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusPassed.IsTerminal())
	assert.True(t, StatusUndefined.IsTerminal())
}

func TestStepStatus_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Status   StepStatus    `json:"status"`
		Category ErrorCategory `json:"category"`
	}{StatusFailed, ErrCategoryAssertion})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","category":"assertion"}`, string(data))
}

func TestStepStatus_UnmarshalJSON(t *testing.T) {
	var v struct {
		Status   StepStatus    `json:"status"`
		Category ErrorCategory `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"skipped","category":"timeout"}`), &v))
	assert.Equal(t, StatusSkipped, v.Status)
	assert.Equal(t, ErrCategoryTimeout, v.Category)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"bogus"}`), &v))
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, StatusPassed, StatusForError(nil))
	assert.Equal(t, StatusFailed, StatusForError(ErrTextMismatch))
	assert.Equal(t, StatusErrored, StatusForError(ErrNoBrowser))
	assert.Equal(t, StatusErrored, StatusForError(errors.New("session crashed")))
}
