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

// IdentityProvider delegates phone verification to a hosted identity
// platform. The platform keeps the challenge server-side, so no local
// session is created: Send hands back the platform's own confirmation
// handle. Sending requires a bot-challenge token obtained by the client
// beforehand.
type IdentityProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewIdentityProvider creates the identity-platform adapter.
func NewIdentityProvider(baseURL, apiKey string) *IdentityProvider {
	return &IdentityProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *IdentityProvider) Name() string { return ProviderIdentity }

func (p *IdentityProvider) Enabled() bool {
	return p.baseURL != "" && p.apiKey != ""
}

// Send satisfies Provider but the identity platform generates its own code
// server-side; the chain always uses SendWithHandle for this adapter.
func (p *IdentityProvider) Send(ctx context.Context, phone, _ string) error {
	_, err := p.SendWithHandle(ctx, phone, "")
	return err
}

// SendWithHandle asks the platform to text its own code to the phone and
// returns a handle that confirms against the platform's verify endpoint.
func (p *IdentityProvider) SendWithHandle(ctx context.Context, phone, challengeToken string) (*Handle, error) {
	reqBody := map[string]string{
		"phoneNumber":    phone,
		"recaptchaToken": challengeToken,
	}
	var resp struct {
		SessionInfo string `json:"sessionInfo"`
	}
	if err := p.post(ctx, "/v1/accounts:sendVerificationCode", reqBody, &resp); err != nil {
		return nil, err
	}
	if resp.SessionInfo == "" {
		return nil, fmt.Errorf("identity platform returned no session info")
	}

	log.Printf("Identity platform challenge started for %s", phone)

	sessionInfo := resp.SessionInfo
	return &Handle{
		Phone:     phone,
		Provider:  ProviderIdentity,
		SessionID: sessionInfo,
		confirm: func(ctx context.Context, code string) (*AuthResult, error) {
			return p.confirm(ctx, phone, sessionInfo, strings.TrimSpace(code))
		},
	}, nil
}

func (p *IdentityProvider) confirm(ctx context.Context, phone, sessionInfo, code string) (*AuthResult, error) {
	reqBody := map[string]string{
		"sessionInfo": sessionInfo,
		"code":        code,
	}
	var resp struct {
		IDToken string `json:"idToken"`
		LocalID string `json:"localId"`
	}
	if err := p.post(ctx, "/v1/accounts:signInWithPhoneNumber", reqBody, &resp); err != nil {
		pe, ok := err.(*platformError)
		if !ok {
			return nil, err
		}
		switch {
		case strings.Contains(pe.message, "SESSION_EXPIRED"):
			return nil, ErrExpired
		case strings.Contains(pe.message, "INVALID_CODE"):
			return nil, ErrInvalidCode
		case strings.Contains(pe.message, "TOO_MANY_ATTEMPTS"):
			return nil, ErrTooManyAttempts
		default:
			return nil, err
		}
	}

	user := User{
		ID:       resp.LocalID,
		Phone:    phone,
		Provider: ProviderIdentity,
	}
	if user.ID == "" {
		user.ID = "usr_" + strings.TrimPrefix(phone, "+")
	}
	return &AuthResult{User: user, Token: resp.IDToken}, nil
}

type platformError struct {
	status  int
	message string
}

func (e *platformError) Error() string {
	return fmt.Sprintf("identity platform returned %d: %s", e.status, e.message)
}

func (p *IdentityProvider) post(ctx context.Context, path string, reqBody interface{}, out interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s%s?key=%s", p.baseURL, path, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		return &platformError{status: resp.StatusCode, message: errResp.Error.Message}
	}
	return json.Unmarshal(respBody, out)
}
