package agendahub

import (
	"strings"
	"testing"
	"time"
)

func TestSourceOAuth(t *testing.T) {
	for source, want := range map[Source]bool{
		SourceManual:     false,
		SourceFriendLink: false,
		SourceGoogle:     true,
		SourceMicrosoft:  true,
	} {
		if got := source.OAuth(); got != want {
			t.Errorf("%s.OAuth() = %v, want %v", source, got, want)
		}
	}
}

func TestTokenValid(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		agenda Agenda
		want   bool
	}{
		{"no token", Agenda{}, false},
		{"unexpired", Agenda{AccessToken: "tok", TokenExpiry: now.Add(time.Hour)}, true},
		{"expired", Agenda{AccessToken: "tok", TokenExpiry: now.Add(-time.Minute)}, false},
		{"expires exactly now", Agenda{AccessToken: "tok", TokenExpiry: now}, false},
		{"no expiry is non-expiring", Agenda{AccessToken: "tok"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.agenda.TokenValid(now); got != tt.want {
				t.Errorf("TokenValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorAt(t *testing.T) {
	for i := 0; i < len(Colors); i++ {
		if ColorAt(i) != Colors[i] {
			t.Errorf("ColorAt(%d) = %q, want %q", i, ColorAt(i), Colors[i])
		}
	}
	// The counter keeps growing past the palette; the palette cycles.
	if got := ColorAt(len(Colors) + 2); got != Colors[2] {
		t.Errorf("ColorAt(len+2) = %q, want %q", got, Colors[2])
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Source: SourceGoogle, StatusCode: 403, Message: "Daily Limit Exceeded"}
	if err.Error() != "google: Daily Limit Exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}

	fallback := &ProviderError{Source: SourceMicrosoft, StatusCode: 503}
	if fallback.Error() != "microsoft: Service Unavailable" {
		t.Errorf("Error() = %q", fallback.Error())
	}
}

func TestAuthFlowError(t *testing.T) {
	err := &AuthFlowError{Code: "access_denied", Description: "The user denied the request."}
	if got := err.Error(); !strings.Contains(got, "access_denied") || !strings.Contains(got, "denied the request") {
		t.Errorf("Error() = %q", got)
	}
	bare := &AuthFlowError{Code: "access_denied"}
	if bare.Error() != "oauth error: access_denied" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestLogf(t *testing.T) {
	var buf strings.Builder
	agenda := &Agenda{Name: "Work", Source: SourceGoogle}

	Logf(&buf, "sync:", agenda, "fetched %d events", 3)
	if got, want := buf.String(), "sync: Agenda google/Work: fetched 3 events\n"; got != want {
		t.Errorf("Logf wrote %q, want %q", got, want)
	}

	buf.Reset()
	Logf(&buf, "", nil, "plain message")
	if got := buf.String(); got != "plain message\n" {
		t.Errorf("Logf wrote %q", got)
	}
}
