package ai

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizePrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		fullLog bool
		check   func(*testing.T, string)
	}{
		{
			name:  "empty",
			input: "",
			check: func(t *testing.T, got string) {
				if got != "" {
					t.Errorf("Expected empty, got %q", got)
				}
			},
		},
		{
			name:  "control characters removed",
			input: "1L water\x00\x1b[31m",
			check: func(t *testing.T, got string) {
				if strings.ContainsAny(got, "\x00\x1b") {
					t.Errorf("Expected control characters to be stripped, got %q", got)
				}
			},
		},
		{
			name:  "short preview truncated on rune boundary",
			input: strings.Repeat("é", MaxPreviewLength+10),
			check: func(t *testing.T, got string) {
				if !utf8.ValidString(got) {
					t.Error("Expected valid UTF-8 after truncation")
				}
				if !strings.HasSuffix(got, "...") {
					t.Error("Expected truncation marker")
				}
			},
		},
		{
			name:    "full log keeps longer content",
			input:   strings.Repeat("a", MaxPreviewLength+10),
			fullLog: true,
			check: func(t *testing.T, got string) {
				if len(got) != MaxPreviewLength+10 {
					t.Errorf("Expected untruncated content, got length %d", len(got))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.check(t, SanitizePrompt(tt.input, tt.fullLog))
		})
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	t.Parallel()

	if got := SanitizeAPIKey("sk-or-v1-abcdef123456"); got != "sk-o[REDACTED]3456" {
		t.Errorf("SanitizeAPIKey() = %q", got)
	}
	if got := SanitizeAPIKey("short"); got != RedactedValue {
		t.Errorf("SanitizeAPIKey(short) = %q", got)
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")
	if got := ExtractRequestID(ctx); got != "req-123" {
		t.Errorf("ExtractRequestID() = %q, want req-123", got)
	}
	if got := ExtractRequestID(context.Background()); got != "" {
		t.Errorf("ExtractRequestID(empty) = %q, want empty", got)
	}
}
