package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithOrderID(ctx, "ord-9")
	logg.Info(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("missing request_id: %v", entry)
	}
	if entry["order_id"] != "ord-9" {
		t.Errorf("missing order_id: %v", entry)
	}
	if entry["service"] != "test" {
		t.Errorf("missing service field: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: &buf})

	logg.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	logg.Warn(context.Background(), "kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Error("debug should parse")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Error("empty should default to info")
	}
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Error("garbage should default to info")
	}
}
