package consumer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-pipeline/internal/processor"
	"telemetry-pipeline/internal/storage/memory"
)

func pushBody(t *testing.T, payload string) []byte {
	t.Helper()
	body := fmt.Sprintf(`{"message": {"data": %q, "messageId": "m-1"}, "subscription": "data-subscription"}`,
		base64.StdEncoding.EncodeToString([]byte(payload)))
	require.True(t, json.Valid([]byte(body)))
	return []byte(body)
}

func TestHandleEvent_Success(t *testing.T) {
	store := memory.NewProcessedRecordStore()
	proc := processor.New(store)

	rec, err := HandleEvent(context.Background(), proc, pushBody(t, validMessage))
	require.NoError(t, err)

	assert.InDelta(t, 1.3853, rec.Mean, 0.001)
	assert.InDelta(t, 0.9215, rec.StdDev, 0.001)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHandleEvent_BadEnvelope(t *testing.T) {
	proc := processor.New(memory.NewProcessedRecordStore())

	_, err := HandleEvent(context.Background(), proc, []byte(`not json`))
	require.Error(t, err)
	assert.Equal(t, processor.KindDecode, processor.KindOf(err))
}

func TestHandleEvent_BadBase64(t *testing.T) {
	store := memory.NewProcessedRecordStore()
	proc := processor.New(store)

	_, err := HandleEvent(context.Background(), proc, []byte(`{"message": {"data": "!!!"}}`))
	require.Error(t, err)
	assert.Equal(t, processor.KindDecode, processor.KindOf(err))

	count, countErr := store.Count(context.Background())
	require.NoError(t, countErr)
	assert.Zero(t, count)
}

func TestHandleEvent_BadPayloadInsideEnvelope(t *testing.T) {
	store := memory.NewProcessedRecordStore()
	proc := processor.New(store)

	_, err := HandleEvent(context.Background(), proc, pushBody(t, `{"data": [1.0, 2.0]}`))
	require.Error(t, err)
	assert.Equal(t, processor.KindValidation, processor.KindOf(err))

	count, countErr := store.Count(context.Background())
	require.NoError(t, countErr)
	assert.Zero(t, count)
}
