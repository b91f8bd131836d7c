package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/rs/zerolog"
)

// Verification rejection reasons. The verifier fails closed: anything other
// than an exact keyed-hash match is rejected.
var (
	ErrMissingSignature  = errors.New("missing signature header")
	ErrMissingSecret     = errors.New("webhook secret not configured")
	ErrBadEncoding       = errors.New("signature is not valid base64")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// WebhookVerifier validates webhook authenticity by computing HMAC-SHA256
// over the exact raw request body and comparing it, constant-time, against
// the base64-encoded signature header. It must always be fed the unparsed
// body bytes: a re-serialized JSON body does not reproduce the original
// byte sequence and never verifies.
type WebhookVerifier struct {
	secret []byte
	skip   bool
	logger zerolog.Logger
}

// NewWebhookVerifier creates a verifier for the given shared secret.
func NewWebhookVerifier(secret string, logger zerolog.Logger) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret), logger: logger}
}

// NewSkippingVerifier creates a verifier that accepts every delivery. Only
// for test and development configurations; every bypassed verification is
// logged at warn level.
func NewSkippingVerifier(logger zerolog.Logger) *WebhookVerifier {
	return &WebhookVerifier{skip: true, logger: logger}
}

// NewVerifierForEnv builds the verifier for a deployment environment. The
// skip mode must be requested explicitly and is refused when env is
// "production"; outside skip mode a non-empty secret is required.
func NewVerifierForEnv(secret string, skipRequested bool, env string, logger zerolog.Logger) (*WebhookVerifier, error) {
	if skipRequested {
		if env == "production" {
			logger.Warn().Msg("Webhook verification skip requested in production, refusing")
		} else {
			logger.Warn().Msg("Webhook signature verification is DISABLED")
			return NewSkippingVerifier(logger), nil
		}
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return NewWebhookVerifier(secret, logger), nil
}

// Verify checks the claimed signature against the raw body. Returns nil for
// an authentic delivery and one of the rejection errors otherwise.
func (v *WebhookVerifier) Verify(body []byte, signatureHeader string) error {
	if v.skip {
		v.logger.Warn().Msg("Webhook signature verification SKIPPED (dev mode)")
		return nil
	}

	if len(v.secret) == 0 {
		return ErrMissingSecret
	}
	if signatureHeader == "" {
		return ErrMissingSignature
	}

	claimed, err := base64.StdEncoding.DecodeString(signatureHeader)
	if err != nil {
		return ErrBadEncoding
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), claimed) {
		return ErrSignatureMismatch
	}

	return nil
}
