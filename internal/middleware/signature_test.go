package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "webhook-secret"

func newSignatureTestApp(key string) *fiber.App {
	app := fiber.New()
	app.Post("/webhook/sms-status", ValidateWebhookSignature(key), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

// signFor mirrors the vendor's scheme: HMAC-SHA256 over the URL followed by
// the sorted form key/value pairs, base64 encoded.
func signFor(key string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := "http://example.com/webhook/sms-status"
	for _, k := range keys {
		data += k + form.Get(k)
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(form url.Values, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/webhook/sms-status",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	return req
}

func TestValidateWebhookSignature_Accepts(t *testing.T) {
	app := newSignatureTestApp(testSigningKey)

	form := url.Values{}
	form.Set("requestId", "req-1")
	form.Set("status", "delivered")
	form.Set("mobile", "919876543210")

	resp, err := app.Test(webhookRequest(form, signFor(testSigningKey, form)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestValidateWebhookSignature_RejectsWrongKey(t *testing.T) {
	app := newSignatureTestApp(testSigningKey)

	form := url.Values{}
	form.Set("status", "delivered")

	resp, err := app.Test(webhookRequest(form, signFor("some-other-key", form)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidateWebhookSignature_RejectsTamperedBody(t *testing.T) {
	app := newSignatureTestApp(testSigningKey)

	signed := url.Values{}
	signed.Set("status", "delivered")
	signature := signFor(testSigningKey, signed)

	tampered := url.Values{}
	tampered.Set("status", "failed")

	resp, err := app.Test(webhookRequest(tampered, signature), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidateWebhookSignature_MissingHeader(t *testing.T) {
	app := newSignatureTestApp(testSigningKey)

	resp, err := app.Test(webhookRequest(url.Values{}, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidateWebhookSignature_UnconfiguredKey(t *testing.T) {
	app := newSignatureTestApp("")

	resp, err := app.Test(webhookRequest(url.Values{}, "anything"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
