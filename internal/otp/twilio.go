package otp

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioProvider delivers the code as a plain SMS through the Twilio REST
// API. It is the second, interchangeable SMS vendor behind MSG91.
type TwilioProvider struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioProvider creates the Twilio SMS adapter. The client is only
// constructed when credentials are present.
func NewTwilioProvider(accountSID, authToken, from string) *TwilioProvider {
	p := &TwilioProvider{from: from}
	if accountSID != "" && authToken != "" {
		p.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
	}
	return p
}

func (t *TwilioProvider) Name() string { return ProviderTwilio }

func (t *TwilioProvider) Enabled() bool {
	return t.client != nil && t.from != ""
}

func (t *TwilioProvider) Send(_ context.Context, phone, code string) error {
	if t.client == nil {
		return fmt.Errorf("twilio client not initialized")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(phone)
	params.SetBody(fmt.Sprintf("Your academy verification code is %s. It is valid for 5 minutes.", code))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send SMS via Twilio to %s: %v", phone, err)
		return err
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	log.Printf("SMS OTP sent to %s via Twilio, SID: %s", phone, *resp.Sid)
	return nil
}
