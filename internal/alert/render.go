package alert

import (
	"fmt"
	"strings"

	"github.com/structeye/internal/models"
)

const smsMaxLength = 160

func renderEmailSubject(level models.AlertLevel) string {
	return fmt.Sprintf("StructEye Alert - %s", strings.ToUpper(string(level)))
}

// renderEmailBody produces the full multi-line report for email delivery.
func renderEmailBody(r *models.SensorReading, level models.AlertLevel, messages []string) string {
	var b strings.Builder

	b.WriteString("Structural Health Monitoring Alert\n\n")
	fmt.Fprintf(&b, "Alert Level: %s\n", strings.ToUpper(string(level)))
	fmt.Fprintf(&b, "Timestamp: %s\n\n", r.Timestamp.UTC().Format("2006-01-02 15:04:05"))

	b.WriteString("Sensor Readings:\n")
	fmt.Fprintf(&b, "- Vibration: %g\n", r.Vibration)
	fmt.Fprintf(&b, "- Strain: %g\n", r.Strain)
	fmt.Fprintf(&b, "- Temperature: %g°C\n\n", r.Temperature)

	b.WriteString("Alert Messages:\n")
	for _, msg := range messages {
		fmt.Fprintf(&b, "• %s\n", msg)
	}

	b.WriteString("\nAnomaly Detection:\n")
	fmt.Fprintf(&b, "- Is Anomaly: %t\n", r.IsAnomaly)
	fmt.Fprintf(&b, "- Anomaly Score: %.3f\n\n", r.AnomalyScore)

	b.WriteString("Please investigate immediately.\n\n---\nStructEye")
	return b.String()
}

// renderSMSBody produces one compact line: severity, truncated time, the three
// raw values abbreviated, and only the first breach message. Kept short on
// purpose for gateway length limits.
func renderSMSBody(r *models.SensorReading, level models.AlertLevel, messages []string) string {
	body := fmt.Sprintf("STRUCTEYE %s ALERT at %s: V:%g S:%g T:%g°C",
		strings.ToUpper(string(level)),
		r.Timestamp.UTC().Format("15:04"),
		r.Vibration, r.Strain, r.Temperature)

	if len(messages) > 0 {
		body += " - " + messages[0]
	}

	if len(body) > smsMaxLength {
		body = body[:smsMaxLength]
	}
	return body
}

// renderChatText is the Slack attachment body: the breach list plus the
// anomaly verdict.
func renderChatText(r *models.SensorReading, messages []string) string {
	lines := make([]string, 0, len(messages)+1)
	lines = append(lines, messages...)
	lines = append(lines, fmt.Sprintf("Anomaly: %t (score %.3f)", r.IsAnomaly, r.AnomalyScore))
	return strings.Join(lines, "\n")
}
