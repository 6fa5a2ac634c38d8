package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const msg91DefaultEndpoint = "https://control.msg91.com/api/v5/otp"

// MSG91Provider delivers the code through MSG91's dedicated OTP endpoint.
// The code travels as a query parameter; the template controls the message
// body on the vendor side.
type MSG91Provider struct {
	endpoint   string
	authKey    string
	templateID string
	senderID   string
	client     *http.Client
}

// NewMSG91Provider creates the SMS adapter. Enabled only when an auth key
// is configured.
func NewMSG91Provider(authKey, templateID, senderID string) *MSG91Provider {
	return &MSG91Provider{
		endpoint:   msg91DefaultEndpoint,
		authKey:    authKey,
		templateID: templateID,
		senderID:   senderID,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MSG91Provider) Name() string { return ProviderMSG91 }

func (m *MSG91Provider) Enabled() bool { return m.authKey != "" }

func (m *MSG91Provider) Send(ctx context.Context, phone, code string) error {
	q := url.Values{}
	q.Set("template_id", m.templateID)
	q.Set("mobile", strings.TrimPrefix(phone, "+"))
	q.Set("otp", code)

	body, err := json.Marshal(map[string]string{"sender": m.senderID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", m.authKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("msg91 returned %d: %s", resp.StatusCode, string(respBody))
	}

	// MSG91 reports some failures with a 200 and a type field in the body.
	var result struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err == nil && result.Type == "error" {
		return fmt.Errorf("msg91 rejected send: %s", result.Message)
	}

	log.Printf("SMS OTP sent to %s via MSG91", phone)
	return nil
}
