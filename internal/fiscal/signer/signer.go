// Package signer wraps document payloads in the signed submission
// envelope expected by the reception endpoint.
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/tecnomade/clouget-pos/internal/fiscal/domain"
)

type envelope struct {
	Payload  string `json:"payload"`
	Digest   string `json:"digest"`
	SignedAt string `json:"signed_at"`
}

type signer struct{}

func New() domain.Signer {
	return signer{}
}

// Sign computes an HMAC-SHA256 digest keyed by the certificate material
// and wraps the payload. The envelope is stored verbatim so re-emission
// resends identical bytes.
func (signer) Sign(_ context.Context, payload []byte, cert *domain.Certificate) ([]byte, error) {
	mac := hmac.New(sha256.New, append(cert.Blob, []byte(cert.Password)...))
	if _, err := mac.Write(payload); err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Payload:  base64.StdEncoding.EncodeToString(payload),
		Digest:   hex.EncodeToString(mac.Sum(nil)),
		SignedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
