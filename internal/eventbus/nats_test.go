package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	payload := map[string]any{"full_name": "Kofi Mensah"}

	event, data, err := encode("persona.name.generated", payload, at)
	require.NoError(t, err)

	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "persona.name.generated", decoded.Subject)
	assert.True(t, at.Equal(decoded.Timestamp))
	assert.JSONEq(t, `{"full_name":"Kofi Mensah"}`, string(decoded.Data))
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, _, err := encode("persona.document.generated", make(chan int), time.Now())
	assert.Error(t, err)
}
