package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/you/phoneauthsvc/domain"
)

// TwilioServiceImpl implements domain.SMSService. Dispatch failures are
// reported through the result, never as a hard error: a persisted code
// is issued whether or not the message went out.
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewTwilioService creates a new Twilio SMS dispatcher
func NewTwilioService(accountSID, authToken, fromNumber string) domain.SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
	}
}

// SendOTP implements domain.SMSService
func (t *TwilioServiceImpl) SendOTP(ctx context.Context, phone, code string) domain.SMSResult {
	// Unconfigured credentials: log instead of sending.
	if t.fromNumber == "" {
		log.Printf("SMS_MOCK: to=%s", phone)
		return domain.SMSResult{Success: true, ProviderRequestID: "mock-" + uuid.NewString()}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(t.fromNumber)
	params.SetBody(fmt.Sprintf("Your verification code is: %s", code))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return domain.SMSResult{Success: false, Err: err}
	}

	result := domain.SMSResult{Success: true}
	if resp.Sid != nil {
		result.ProviderRequestID = *resp.Sid
	}
	return result
}
