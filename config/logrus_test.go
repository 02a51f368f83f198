package config_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/machinecraft/inventory_backend/config"
	"github.com/machinecraft/inventory_backend/utils"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger := config.GetLogger()
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}

func TestLogRequestError_TagsCorrelationId(t *testing.T) {
	buf := captureLog(t)

	ctx := utils.SetCorrelationIdInContext(context.Background(), "req-42")
	config.LogRequestError(ctx, "server.go", "itemsHandler", "search items", nil, errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["correlationId"] != "req-42" {
		t.Fatalf("correlationId = %v, want req-42", entry["correlationId"])
	}
	if entry["module"] != "server.go" || entry["funcName"] != "itemsHandler" {
		t.Fatalf("unexpected fields %v", entry)
	}
	if entry["msg"] != "boom" {
		t.Fatalf("msg = %v, want boom", entry["msg"])
	}
}

func TestLogRequestError_WithoutCorrelationId(t *testing.T) {
	buf := captureLog(t)

	config.LogRequestError(context.Background(), "server.go", "summaryHandler", "inventory summary", nil, errors.New("db down"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if _, ok := entry["correlationId"]; ok {
		t.Fatal("correlationId should be absent when the context carries none")
	}
}
