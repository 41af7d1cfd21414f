package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishPartnerScored(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, "partner.scored")

	e := PartnerScored{
		PartnerID: uuid.New(),
		RecordID:  uuid.New(),
		Score:     72,
		RiskLevel: "Low",
		ScoredBy:  "rules",
		ScoredAt:  time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishPartnerScored(context.Background(), e))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, e.PartnerID.String(), string(msg.Key))
	assert.Equal(t, e.ScoredAt, msg.Time)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, TypePartnerScored, headers["event-type"])
	assert.Equal(t, "application/json", headers["content-type"])

	var decoded PartnerScored
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e, decoded)
}

func TestKafkaPublisher_WriteErrorWrapped(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := newKafkaPublisher(&recordingWriter{err: boom}, "partner.scored")

	err := p.PublishPartnerScored(context.Background(), PartnerScored{PartnerID: uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "partner.scored")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, newKafkaPublisher(w, "t").Close())
	assert.True(t, w.closed)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishPartnerScored(context.Background(), PartnerScored{}))
	assert.NoError(t, p.Close())
}
