//go:build integration

package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_RecordSavedRoundTrip(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	opts := []nats.Option{}
	if token := os.Getenv("NATS_TOKEN"); token != "" {
		opts = append(opts, nats.Token(token))
	}
	listener, err := nats.Connect(natsURL, opts...)
	if err != nil {
		t.Fatalf("listener connect failed: %v", err)
	}
	defer listener.Close()

	received := make(chan RecordSavedEvent, 1)
	_, err = listener.Subscribe(SubjectRecordSaved, func(msg *nats.Msg) {
		var ev RecordSavedEvent
		if err := json.Unmarshal(msg.Data, &ev); err == nil {
			received <- ev
		}
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := listener.Flush(); err != nil {
		t.Fatalf("listener flush failed: %v", err)
	}

	if err := client.Publish(SubjectRecordSaved, RecordSavedEvent{SessionID: "it", Row: 7}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Flush(flushCtx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	select {
	case ev := <-received:
		if ev.SessionID != "it" || ev.Row != 7 {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
