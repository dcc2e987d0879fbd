package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tyemirov/trustanchor/pkg/logging"
)

func TestNormalizeTypeHandlesVariants(t *testing.T) {
	testCases := []struct {
		testName     string
		rawValue     string
		expectedType string
		expectErr    bool
	}{
		{testName: "EmptyValueDefaultsToConsole", rawValue: "", expectedType: logging.TypeConsole},
		{testName: "WhitespaceDefaultsToConsole", rawValue: "   ", expectedType: logging.TypeConsole},
		{testName: "LowercaseConsole", rawValue: "console", expectedType: logging.TypeConsole},
		{testName: "MixedCaseJSON", rawValue: " JsOn ", expectedType: logging.TypeJSON},
		{testName: "UnsupportedType", rawValue: "text", expectErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.testName, func(t *testing.T) {
			actualType, err := logging.NormalizeType(testCase.rawValue)
			if testCase.expectErr {
				if err == nil {
					t.Fatalf("expected error for value %q", testCase.rawValue)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize returned unexpected error: %v", err)
			}
			if actualType != testCase.expectedType {
				t.Fatalf("expected %s, got %s", testCase.expectedType, actualType)
			}
		})
	}
}

func newBufferedService(t *testing.T, loggingType string, buffer *bytes.Buffer) *logging.Service {
	t.Helper()
	var encoder zapcore.Encoder
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "msg",
		LevelKey:   "level",
		LineEnding: zapcore.DefaultLineEnding,
	}
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	if loggingType == logging.TypeJSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(buffer), zapcore.InfoLevel)
	return logging.NewServiceWithLogger(loggingType, zap.New(core))
}

func TestConsoleModeRendersFieldsInline(t *testing.T) {
	buffer := &bytes.Buffer{}
	service := newBufferedService(t, logging.TypeConsole, buffer)

	service.Info("loaded trust anchors", logging.String("path", "/etc/anchors.pem"), logging.Int("count", 3))

	line := buffer.String()
	if !strings.Contains(line, "loaded trust anchors") {
		t.Fatalf("expected message in console output, got %q", line)
	}
	if !strings.Contains(line, `path="/etc/anchors.pem"`) {
		t.Fatalf("expected inline path field, got %q", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Fatalf("expected inline count field, got %q", line)
	}
}

func TestJSONModeEmitsStructuredFields(t *testing.T) {
	buffer := &bytes.Buffer{}
	service := newBufferedService(t, logging.TypeJSON, buffer)

	service.Error("cannot open trust store file", errors.New("boom"), logging.String("path", "/missing"))

	var entry map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &entry); err != nil {
		t.Fatalf("parse json log entry: %v", err)
	}
	if entry["level"] != "error" {
		t.Fatalf("expected error level, got %v", entry["level"])
	}
	if entry["msg"] != "cannot open trust store file" {
		t.Fatalf("unexpected message %v", entry["msg"])
	}
	if entry["error"] != "boom" {
		t.Fatalf("expected error field, got %v", entry["error"])
	}
	if entry["path"] != "/missing" {
		t.Fatalf("expected path field, got %v", entry["path"])
	}
}

func TestConsoleModeRendersErrorsInline(t *testing.T) {
	buffer := &bytes.Buffer{}
	service := newBufferedService(t, logging.TypeConsole, buffer)

	service.Error("discovery failed", errors.New("denied"))

	line := buffer.String()
	if !strings.Contains(line, `error="denied"`) {
		t.Fatalf("expected inline error field, got %q", line)
	}
}
