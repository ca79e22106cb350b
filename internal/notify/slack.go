package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"github.com/structeye/internal/models"
)

// SlackGateway posts alerts to a channel as colored attachments.
type SlackGateway struct {
	client  *slack.Client
	channel string
}

func NewSlackGateway(token, channel string) *SlackGateway {
	return &SlackGateway{
		client:  slack.New(token),
		channel: channel,
	}
}

func (g *SlackGateway) Send(ctx context.Context, level models.AlertLevel, title, text string) error {
	attachment := slack.Attachment{
		Color:  alertColor(level),
		Title:  title,
		Text:   text,
		Footer: "StructEye Alert System",
	}

	_, _, err := g.client.PostMessageContext(
		ctx,
		g.channel,
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return fmt.Errorf("slack post to %s: %v", g.channel, err)
	}
	return nil
}

func alertColor(level models.AlertLevel) string {
	switch level {
	case models.AlertLevelCritical:
		return "#FF0000"
	case models.AlertLevelWarning:
		return "#FFA500"
	default:
		return "#36a64f"
	}
}
