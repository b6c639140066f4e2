package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
	"github.com/kursadbilgin/emergency-alerts/internal/provider"
)

const (
	textTranscriptLimit  = 100
	emailTranscriptLimit = 200
	truncationMarker     = "..."
	alertTimeLayout      = "Jan 2, 2006 15:04 MST"
)

var urgencyColors = map[domain.Urgency]string{
	domain.UrgencyCritical: "#dc2626",
	domain.UrgencyHigh:     "#ea580c",
}

const defaultUrgencyColor = "#eab308"

var alertEmailTemplate = template.Must(template.New("alert-email").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #dc2626; color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0;">🚨 EMERGENCY ALERT</h1>
  </div>
  <div style="padding: 20px; background-color: #f3f4f6;">
    <p>Dear {{.Name}},</p>
    <p>An emergency call has been reported. Please take immediate action.</p>
    <div style="background-color: white; padding: 15px; border-radius: 8px; margin: 15px 0;">
      <p><strong>Urgency Level:</strong> <span style="color: {{.Color}};">{{.Urgency}}</span></p>
      {{- if .Location}}
      <p><strong>Location:</strong> {{.Location}}</p>
      {{- end}}
      {{- if .IncidentType}}
      <p><strong>Incident Type:</strong> {{.IncidentType}}</p>
      {{- end}}
      <p><strong>Time:</strong> {{.Time}}</p>
      <p><strong>Details:</strong> {{.Transcript}}</p>
    </div>
    <p style="color: #dc2626; font-weight: bold;">Please respond immediately if this is a genuine emergency.</p>
  </div>
</div>
`))

type alertEmailView struct {
	Name         string
	Urgency      string
	Color        template.CSS
	Location     string
	IncidentType string
	Time         string
	Transcript   string
}

// renderAlertText builds the body shared by SMS and WhatsApp.
func renderAlertText(details domain.CallDetails) string {
	var b strings.Builder
	b.WriteString("🚨 EMERGENCY ALERT 🚨\n\n")
	fmt.Fprintf(&b, "Urgency: %s\n", urgencyLabel(details.Urgency))
	if location := optional(details.Location); location != "" {
		fmt.Fprintf(&b, "Location: %s\n", location)
	}
	if incidentType := optional(details.IncidentType); incidentType != "" {
		fmt.Fprintf(&b, "Type: %s\n", incidentType)
	}
	fmt.Fprintf(&b, "Time: %s\n\n", formatAlertTime(details.CreatedAt))

	transcript, _ := truncateRunes(details.Transcript, textTranscriptLimit)
	fmt.Fprintf(&b, "Details: %s%s", transcript, truncationMarker)

	return b.String()
}

// renderAlertEmail builds the per-contact HTML email. Dynamic values are escaped by html/template.
func renderAlertEmail(contactName string, details domain.CallDetails) (provider.EmailMessage, error) {
	transcript, truncated := truncateRunes(details.Transcript, emailTranscriptLimit)
	if truncated {
		transcript += truncationMarker
	}

	view := alertEmailView{
		Name:         contactName,
		Urgency:      urgencyLabel(details.Urgency),
		Color:        template.CSS(urgencyColor(details.Urgency)),
		Location:     optional(details.Location),
		IncidentType: optional(details.IncidentType),
		Time:         formatAlertTime(details.CreatedAt),
		Transcript:   transcript,
	}

	var body bytes.Buffer
	if err := alertEmailTemplate.Execute(&body, view); err != nil {
		return provider.EmailMessage{}, fmt.Errorf("render alert email: %w", err)
	}

	return provider.EmailMessage{
		Subject: alertEmailSubject(details.Urgency),
		HTML:    body.String(),
	}, nil
}

func alertEmailSubject(urgency domain.Urgency) string {
	return fmt.Sprintf("🚨 EMERGENCY ALERT - %s URGENCY", urgencyLabel(urgency))
}

func urgencyLabel(urgency domain.Urgency) string {
	return strings.ToUpper(urgency.String())
}

func urgencyColor(urgency domain.Urgency) string {
	if color, ok := urgencyColors[urgency]; ok {
		return color
	}
	return defaultUrgencyColor
}

func formatAlertTime(t time.Time) string {
	return t.UTC().Format(alertTimeLayout)
}

// truncateRunes cuts s to at most limit runes and reports whether anything was dropped.
func truncateRunes(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}

	runes := []rune(s)
	return string(runes[:limit]), true
}

func optional(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
