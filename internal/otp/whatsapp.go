package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// templateShape builds one payload variant for the campaign API. The
// vendor's template contract is not reliably documented, so the adapter
// keeps a set of known-good parameter shapes and walks through them when
// the API reports a parameter mismatch.
type templateShape struct {
	name  string
	build func(campaign, phone, code string) map[string]interface{}
}

var whatsappShapes = []templateShape{
	{
		name: "single-param",
		build: func(campaign, phone, code string) map[string]interface{} {
			return map[string]interface{}{
				"campaignName":   campaign,
				"destination":    phone,
				"templateParams": []string{code},
			}
		},
	},
	{
		name: "double-param",
		build: func(campaign, phone, code string) map[string]interface{} {
			return map[string]interface{}{
				"campaignName":   campaign,
				"destination":    phone,
				"templateParams": []string{code, code},
			}
		},
	},
	{
		name: "attributes",
		build: func(campaign, phone, code string) map[string]interface{} {
			return map[string]interface{}{
				"campaignName":   campaign,
				"destination":    phone,
				"templateParams": []string{},
				"attributes":     map[string]string{"otp": code},
			}
		},
	},
	{
		name: "copy-code-button",
		build: func(campaign, phone, code string) map[string]interface{} {
			return map[string]interface{}{
				"campaignName":   campaign,
				"destination":    phone,
				"templateParams": []string{code},
				"buttons": []map[string]interface{}{
					{
						"type":     "button",
						"sub_type": "url",
						"index":    0,
						"parameters": []map[string]string{
							{"type": "text", "text": code},
						},
					},
				},
			}
		},
	},
	{
		name: "named-param",
		build: func(campaign, phone, code string) map[string]interface{} {
			return map[string]interface{}{
				"campaignName": campaign,
				"destination":  phone,
				"templateParams": []map[string]string{
					{"name": "otp", "value": code},
				},
			}
		},
	},
}

// WhatsAppProvider delivers the code through a templated WhatsApp campaign
// endpoint.
type WhatsAppProvider struct {
	endpoint   string
	apiKey     string
	campaign   string
	startShape string
	client     *http.Client
}

// NewWhatsAppProvider creates the campaign adapter. startShape optionally
// names the template shape to try first.
func NewWhatsAppProvider(endpoint, apiKey, campaign, startShape string) *WhatsAppProvider {
	return &WhatsAppProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		campaign:   campaign,
		startShape: startShape,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WhatsAppProvider) Name() string { return ProviderWhatsApp }

func (w *WhatsAppProvider) Enabled() bool {
	return w.endpoint != "" && w.apiKey != ""
}

// Send posts the code as a campaign template parameter. On a template
// parameter mismatch it retries with the remaining payload shapes before
// giving up; any other failure is returned as-is.
func (w *WhatsAppProvider) Send(ctx context.Context, phone, code string) error {
	shapes := w.orderedShapes()

	var lastErr error
	for _, shape := range shapes {
		err := w.post(ctx, shape.build(w.campaign, phone, code))
		if err == nil {
			log.Printf("WhatsApp OTP sent to %s (shape %s)", phone, shape.name)
			return nil
		}
		lastErr = err
		if !isTemplateMismatch(err) {
			return err
		}
		log.Printf("WhatsApp template shape %s rejected for %s, trying next: %v", shape.name, phone, err)
	}
	return fmt.Errorf("all template shapes rejected: %w", lastErr)
}

// orderedShapes rotates the shape list so the configured starting shape
// comes first.
func (w *WhatsAppProvider) orderedShapes() []templateShape {
	if w.startShape == "" {
		return whatsappShapes
	}
	for i, s := range whatsappShapes {
		if s.name == w.startShape {
			ordered := make([]templateShape, 0, len(whatsappShapes))
			ordered = append(ordered, whatsappShapes[i:]...)
			ordered = append(ordered, whatsappShapes[:i]...)
			return ordered
		}
	}
	return whatsappShapes
}

func (w *WhatsAppProvider) post(ctx context.Context, payload map[string]interface{}) error {
	payload["apiKey"] = w.apiKey

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &campaignError{status: resp.StatusCode, body: string(respBody)}
}

type campaignError struct {
	status int
	body   string
}

func (e *campaignError) Error() string {
	return fmt.Sprintf("campaign API returned %d: %s", e.status, e.body)
}

// isTemplateMismatch reports whether the error is the vendor's
// template-parameter-mismatch class, the only class worth retrying with a
// different payload shape.
func isTemplateMismatch(err error) bool {
	ce, ok := err.(*campaignError)
	if !ok {
		return false
	}
	if ce.status != http.StatusBadRequest && ce.status != http.StatusUnprocessableEntity {
		return false
	}
	body := strings.ToLower(ce.body)
	return strings.Contains(body, "template") && strings.Contains(body, "param")
}
