package service

import (
	"strings"
	"testing"
	"time"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

func TestRenderAlertText(t *testing.T) {
	t.Parallel()

	details := domain.CallDetails{
		Transcript:   "Short transcript",
		Urgency:      domain.UrgencyMedium,
		Location:     strPtr("Pier 9"),
		IncidentType: strPtr("flood"),
		CreatedAt:    time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	got := renderAlertText(details)
	want := "🚨 EMERGENCY ALERT 🚨\n\n" +
		"Urgency: MEDIUM\n" +
		"Location: Pier 9\n" +
		"Type: flood\n" +
		"Time: Mar 1, 2026 10:30 UTC\n\n" +
		"Details: Short transcript..."
	if got != want {
		t.Fatalf("renderAlertText() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderAlertTextOmitsMissingOptionalFields(t *testing.T) {
	t.Parallel()

	got := renderAlertText(domain.CallDetails{
		Transcript: "help",
		Urgency:    domain.UrgencyLow,
		Location:   strPtr("  "),
	})

	if strings.Contains(got, "Location:") || strings.Contains(got, "Type:") {
		t.Fatalf("optional lines should be omitted:\n%s", got)
	}
}

func TestRenderAlertEmail(t *testing.T) {
	t.Parallel()

	details := domain.CallDetails{
		Transcript:   `<script>alert("x")</script> short`,
		Urgency:      domain.UrgencyHigh,
		IncidentType: strPtr("medical & trauma"),
		CreatedAt:    time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	msg, err := renderAlertEmail("Ana <Admin>", details)
	if err != nil {
		t.Fatalf("renderAlertEmail() error = %v", err)
	}

	if msg.Subject != "🚨 EMERGENCY ALERT - HIGH URGENCY" {
		t.Fatalf("Subject = %q", msg.Subject)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatal("transcript must be HTML-escaped")
	}
	if !strings.Contains(msg.HTML, "&lt;script&gt;") {
		t.Fatalf("escaped transcript missing:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "Dear Ana &lt;Admin&gt;,") {
		t.Fatalf("escaped contact name missing:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "medical &amp; trauma") {
		t.Fatalf("escaped incident type missing:\n%s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "Location:") {
		t.Fatal("location line should be omitted when unset")
	}
	if !strings.Contains(msg.HTML, "color: #ea580c;") {
		t.Fatalf("high urgency colour missing:\n%s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "short...") {
		t.Fatal("continuation marker must only follow a truncated transcript")
	}
}

func TestUrgencyColor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		urgency domain.Urgency
		want    string
	}{
		{urgency: domain.UrgencyCritical, want: "#dc2626"},
		{urgency: domain.UrgencyHigh, want: "#ea580c"},
		{urgency: domain.UrgencyMedium, want: "#eab308"},
		{urgency: domain.UrgencyLow, want: "#eab308"},
		{urgency: domain.Urgency("unknown"), want: "#eab308"},
	}

	for _, tc := range testCases {
		if got := urgencyColor(tc.urgency); got != tc.want {
			t.Fatalf("urgencyColor(%q) = %s, want %s", tc.urgency, got, tc.want)
		}
	}
}

func TestTruncateRunesIsRuneSafe(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("ü", 5)
	got, truncated := truncateRunes(s, 3)
	if got != "üüü" || !truncated {
		t.Fatalf("truncateRunes() = %q, %v", got, truncated)
	}

	got, truncated = truncateRunes("abc", 3)
	if got != "abc" || truncated {
		t.Fatalf("truncateRunes() = %q, %v", got, truncated)
	}
}
