package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"
)

// ValidateWebhookSignature validates that a delivery-status callback really
// comes from the SMS vendor, using the shared HMAC key from configuration.
func ValidateWebhookSignature(signingKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Webhook-Signature")
		if signature == "" {
			return c.Status(401).JSON(fiber.Map{
				"error": "Missing webhook signature",
			})
		}

		if signingKey == "" {
			fmt.Println("ERROR: WEBHOOK_SIGNING_KEY not set")
			return c.Status(500).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		// Get all form parameters
		formParams := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			formParams[string(key)] = string(value)
		})

		expected := calculateSignature(signingKey, getFullURL(c), formParams)
		if !hmac.Equal([]byte(signature), []byte(expected)) {
			return c.Status(401).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// getFullURL constructs the full URL for the request
func getFullURL(c *fiber.Ctx) string {
	protocol := "https"
	if c.Protocol() == "http" {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s%s", protocol, c.Hostname(), c.Path())
}

// calculateSignature calculates the expected signature over the URL plus
// the sorted form parameters
func calculateSignature(signingKey, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := url
	for _, k := range keys {
		data += k + params[k]
	}

	h := hmac.New(sha256.New, []byte(signingKey))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
