package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"telemetry-pipeline/internal/domain"
	"telemetry-pipeline/internal/processor"
)

// PushEnvelope is the push-delivery wrapper handed to one-shot
// consumers: a single base64-encoded message plus opaque metadata.
type PushEnvelope struct {
	Message struct {
		// Data stays base64-encoded here; ProcessEncoded decodes it so
		// a bad encoding is classified like every other decode failure.
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// HandleEvent processes one push-delivered event body. It is the
// one-shot counterpart of the pull loop: no retries, no ack plumbing.
// Returning an error hands the redelivery decision back to the
// delivering infrastructure.
func HandleEvent(ctx context.Context, proc *processor.Processor, body []byte) (*domain.ProcessedRecord, error) {
	var env PushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &processor.Error{Kind: processor.KindDecode, Err: fmt.Errorf("decode push envelope: %w", err)}
	}
	return proc.ProcessEncoded(ctx, env.Message.Data)
}
