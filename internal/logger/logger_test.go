package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, false)

	log.Info("product created", slog.String("product_id", "abc"), slog.Int("stock", 3))

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if logEntry["msg"] != "product created" {
		t.Errorf("Expected msg to be 'product created', got '%v'", logEntry["msg"])
	}
	if logEntry["product_id"] != "abc" {
		t.Errorf("Expected product_id to be 'abc', got '%v'", logEntry["product_id"])
	}
	if logEntry["stock"] != float64(3) {
		t.Errorf("Expected stock to be 3, got '%v'", logEntry["stock"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level to be 'INFO', got '%v'", logEntry["level"])
	}
	if _, ok := logEntry["time"]; !ok {
		t.Error("Expected 'time' field in JSON log output")
	}
}

func TestNewJSONLogger_DebugLevel(t *testing.T) {
	var quiet, verbose bytes.Buffer

	NewJSONLogger(&quiet, false).Debug("hidden")
	NewJSONLogger(&verbose, true).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("Expected debug record to be dropped, got %s", quiet.String())
	}
	if !bytes.Contains(verbose.Bytes(), []byte(`"level":"DEBUG"`)) {
		t.Errorf("Expected debug record, got %s", verbose.String())
	}
}

// TestInitJSONLogger_OutputFormat verifies that InitJSONLogger sets up
// JSON formatted output for slog.
func TestInitJSONLogger_OutputFormat(t *testing.T) {
	oldStdout := os.Stdout
	oldDefault := slog.Default()
	defer slog.SetDefault(oldDefault)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	InitJSONLogger(false)
	slog.Info("test initialization", slog.String("service", "test"), slog.Int("port", 8080))

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	if _, err = buf.ReadFrom(r); err != nil {
		t.Fatalf("Failed to read from pipe: %v", err)
	}

	var logEntry map[string]interface{}
	if err = json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if logEntry["msg"] != "test initialization" {
		t.Errorf("Expected msg to be 'test initialization', got '%v'", logEntry["msg"])
	}
	if logEntry["service"] != "test" {
		t.Errorf("Expected service to be 'test', got '%v'", logEntry["service"])
	}
	if logEntry["port"] != float64(8080) {
		t.Errorf("Expected port to be 8080, got '%v'", logEntry["port"])
	}
}
