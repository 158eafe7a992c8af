// Package common provides tests for message and logging functionality
package common

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
)

func TestSetVerboseMode(t *testing.T) {
	// Test enabling verbose mode
	SetVerboseMode(true)
	if !VerboseMode {
		t.Error("SetVerboseMode(true) should enable verbose mode")
	}

	// Test disabling verbose mode
	SetVerboseMode(false)
	if VerboseMode {
		t.Error("SetVerboseMode(false) should disable verbose mode")
	}
}

func TestLogDebug_VerboseEnabled(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	defer SetVerboseMode(false)

	SetVerboseMode(true)
	LogDebug(DebugApploaderSize, 0x1234)

	output := buf.String()
	if !strings.Contains(output, "[DEBUG] Apploader size -> 1234") {
		t.Errorf("LogDebug output should contain formatted message, got: %q", output)
	}
}

func TestLogDebug_VerboseDisabled(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	SetVerboseMode(false)
	LogDebug("This should not appear", 42)

	if output := buf.String(); output != "" {
		t.Errorf("LogDebug should be silent when verbose mode is disabled, got: %q", output)
	}
}

func TestLogLevels(t *testing.T) {
	testCases := []struct {
		name   string
		logFn  func(string, ...interface{})
		prefix string
	}{
		{"info", LogInfo, "[INFO]"},
		{"warn", LogWarn, "[WARN]"},
		{"error", LogError, "[ERROR]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			defer log.SetOutput(os.Stderr)

			tc.logFn(InfoAlreadyExists, "out/a.bin")

			output := buf.String()
			if !strings.Contains(output, tc.prefix+" out/a.bin already exists") {
				t.Errorf("output should contain %q prefix and message, got: %q", tc.prefix, output)
			}
		})
	}
}

// Messages without arguments must not be treated as format strings
func TestLogFunctions_NoArgs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	LogWarn("100% done")

	if output := buf.String(); !strings.Contains(output, "100% done") {
		t.Errorf("LogWarn without args should print the message verbatim, got: %q", output)
	}
}

func TestFormatError(t *testing.T) {
	originalError := fmt.Errorf("original error")

	formattedError := FormatError(ErrFailedToReadVolume, originalError)

	expectedMessage := "failed to read volume: original error"
	if formattedError.Error() != expectedMessage {
		t.Errorf("FormatError() = %q, want %q", formattedError.Error(), expectedMessage)
	}
	if !errors.Is(formattedError, originalError) {
		t.Error("FormatError() should wrap the original error")
	}
}

func TestFormatError_NonError(t *testing.T) {
	formattedError := FormatError(ErrFailedToReadFST, 42)

	if formattedError.Error() != "failed to read filesystem table: 42" {
		t.Errorf("FormatError() = %q", formattedError.Error())
	}
}

func TestFormatErrorString(t *testing.T) {
	testCases := []struct {
		name     string
		details  string
		args     []interface{}
		expected string
	}{
		{"no args", "bad magic", nil, "failed to open disc image: bad magic"},
		{"with args", "offset 0x%X out of range", []interface{}{0x2440}, "failed to open disc image: offset 0x2440 out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := FormatErrorString(ErrFailedToOpenImage, tc.details, tc.args...)
			if err.Error() != tc.expected {
				t.Errorf("FormatErrorString() = %q, want %q", err.Error(), tc.expected)
			}
		})
	}
}

func TestErrorConstants(t *testing.T) {
	errorConstants := map[string]string{
		"ErrFailedToCreateOutputFile":  ErrFailedToCreateOutputFile,
		"ErrFailedToCreateOutputDir":   ErrFailedToCreateOutputDir,
		"ErrFailedToReadVolume":        ErrFailedToReadVolume,
		"ErrFailedToWriteOutput":       ErrFailedToWriteOutput,
		"ErrFailedToReadApploaderSize": ErrFailedToReadApploaderSize,
		"ErrFailedToReadDOLOffset":     ErrFailedToReadDOLOffset,
		"ErrFailedToOpenImage":         ErrFailedToOpenImage,
		"ErrFailedToReadFST":           ErrFailedToReadFST,
		"ErrFailedToReadHeader":        ErrFailedToReadHeader,
	}

	for name, value := range errorConstants {
		if len(value) < 10 {
			t.Errorf("Error constant %s seems too short: %q", name, value)
		}
	}
}
