package domain

import "context"

// ReceptionResult is the authority's answer to a submission. A transport
// problem is an error return, never a rejection.
type ReceptionResult struct {
	Accepted bool
	Message  string
}

// AuthorizationVerdict is the authority's answer to an authorization
// query. Exactly one of Authorized/Rejected is set when a verdict
// exists; neither means the document is still in flight.
type AuthorizationVerdict struct {
	Authorized bool
	Rejected   bool
	Number     string
	Message    string
}

type AuthorityClient interface {
	Submit(ctx context.Context, env Environment, accessKey string, signedPayload []byte) (ReceptionResult, error)
	QueryAuthorization(ctx context.Context, env Environment, accessKey string) (AuthorizationVerdict, error)
}

// Signer produces the signed submission envelope from the raw document
// payload and the stored certificate.
type Signer interface {
	Sign(ctx context.Context, payload []byte, cert *Certificate) ([]byte, error)
}
