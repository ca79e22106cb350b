package notify

import (
	"context"

	"github.com/structeye/internal/models"
)

// EmailGateway delivers one rendered alert body to one recipient. The context
// bounds the attempt; implementations must not hang past its deadline.
type EmailGateway interface {
	Send(ctx context.Context, subject, body, recipient string) error
}

// SMSGateway delivers one compact alert line and returns the provider's
// message id on success.
type SMSGateway interface {
	Send(ctx context.Context, body, recipient string) (string, error)
}

// ChatGateway posts an alert to a chat channel.
type ChatGateway interface {
	Send(ctx context.Context, level models.AlertLevel, title, text string) error
}
