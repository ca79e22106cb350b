package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioGateway sends SMS through the Twilio REST API. The HTTP client
// timeout bounds every attempt.
type TwilioGateway struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioGateway(accountSID, authToken, fromNumber string, timeout time.Duration) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(timeout)

	return &TwilioGateway{client: client, from: fromNumber}
}

func (g *TwilioGateway) Send(_ context.Context, body, recipient string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetBody(body)
	params.SetFrom(g.from)
	params.SetTo(recipient)

	resp, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send to %s: %v", recipient, err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio send to %s: no message sid returned", recipient)
	}
	return *resp.Sid, nil
}
