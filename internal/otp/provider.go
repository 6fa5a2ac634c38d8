package otp

import "context"

// Provider names, also stored on sessions so a verified identity records
// which channel delivered its code.
const (
	ProviderWhatsApp = "whatsapp"
	ProviderMSG91    = "msg91"
	ProviderTwilio   = "twilio"
	ProviderIdentity = "identity"
	ProviderLocal    = "local"
)

// Provider is one OTP delivery channel. Enabled is derived from the
// presence of the channel's credentials; disabled providers are skipped by
// the fallback chain without counting as a failure.
type Provider interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, phone, code string) error
}

// HandleProvider is implemented by providers that hold the challenge on
// their own side and hand back a native confirmation handle instead of
// relying on the local session store. challengeToken is the bot-challenge
// proof the client obtained before asking for a code.
type HandleProvider interface {
	Provider
	SendWithHandle(ctx context.Context, phone, challengeToken string) (*Handle, error)
}
