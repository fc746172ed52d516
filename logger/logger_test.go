package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/vyomadl/vyoma-dl/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Level
		wantErr bool
	}{
		{input: "debug", want: log.DebugLevel},
		{input: "verbose", want: logger.VerboseLevel},
		{input: "INFO", want: log.InfoLevel},
		{input: "", want: log.InfoLevel},
		{input: "warn", want: log.WarnLevel},
		{input: "loud", wantErr: true},
	}
	for _, tc := range tests {
		got, err := logger.ParseLevel(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}
}

func TestVerboseFiltering(t *testing.T) {
	var buf bytes.Buffer
	base := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	l := logger.Wrap(base)
	l.Verbose("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("verbose record leaked at info level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("info record missing: %q", buf.String())
	}

	buf.Reset()
	base.SetLevel(logger.VerboseLevel)
	l.Verbose("now visible")
	l.Debug("still hidden")
	if !strings.Contains(buf.String(), "now visible") || strings.Contains(buf.String(), "still hidden") {
		t.Errorf("unexpected output at verbose level: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.WithContext(context.Background(), log.NewWithOptions(&buf, log.Options{}))
	logger.FromContext(ctx).With("course", "abc").Info("hello")
	if !strings.Contains(buf.String(), "course=abc") {
		t.Errorf("context logger not used: %q", buf.String())
	}
}
