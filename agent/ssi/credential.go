package ssi

import (
	"time"
)

const (
	CredentialsContext         = "https://www.w3.org/2018/credentials/v1"
	CredentialsExamplesContext = "https://www.w3.org/2018/credentials/examples/v1"

	TypeVerifiableCredential   = "VerifiableCredential"
	TypeVerifiablePresentation = "VerifiablePresentation"

	ProofEd25519Signature2018 = "Ed25519Signature2018"
	PurposeAssertionMethod    = "assertionMethod"
	PurposeAuthentication     = "authentication"
)

// Proof is the embedded linked data proof of a credential or presentation.
type Proof struct {
	Type               string    `json:"type"`
	Created            time.Time `json:"created"`
	ProofPurpose       string    `json:"proofPurpose"`
	VerificationMethod string    `json:"verificationMethod"`
	JWS                string    `json:"jws"`
}

// VerifiableCredential follows the W3C VC data model. It is immutable once
// stored to a wallet.
type VerifiableCredential struct {
	Context           []string       `json:"@context"`
	ID                string         `json:"id,omitempty"`
	Type              []string       `json:"type"`
	Issuer            string         `json:"issuer"`
	IssuanceDate      *time.Time     `json:"issuanceDate,omitempty"`
	ExpirationDate    *time.Time     `json:"expirationDate,omitempty"`
	CredentialSubject map[string]any `json:"credentialSubject"`
	Proof             *Proof         `json:"proof,omitempty"`
}

// SubjectID returns the id claim of the credential subject if there is one.
func (vc *VerifiableCredential) SubjectID() string {
	if vc.CredentialSubject == nil {
		return ""
	}
	id, _ := vc.CredentialSubject["id"].(string)
	return id
}

// Expired tells if the expiration date has passed at now.
func (vc *VerifiableCredential) Expired(now time.Time) bool {
	return vc.ExpirationDate != nil && vc.ExpirationDate.Before(now)
}

// Unsigned returns a copy of the credential without the proof.
func (vc *VerifiableCredential) Unsigned() VerifiableCredential {
	c := *vc
	c.Proof = nil
	return c
}

// VerifiablePresentation is built on demand and never persisted.
type VerifiablePresentation struct {
	Context              []string               `json:"@context"`
	ID                   string                 `json:"id,omitempty"`
	Type                 []string               `json:"type"`
	Holder               string                 `json:"holder,omitempty"`
	VerifiableCredential []VerifiableCredential `json:"verifiableCredential"`
	Proof                *Proof                 `json:"proof,omitempty"`
}

// NewPresentation is the value constructor of the unsigned presentation
// envelope.
func NewPresentation(id, holder string, vcs []VerifiableCredential) VerifiablePresentation {
	return VerifiablePresentation{
		Context:              []string{CredentialsContext},
		ID:                   id,
		Type:                 []string{TypeVerifiablePresentation},
		Holder:               holder,
		VerifiableCredential: append([]VerifiableCredential{}, vcs...),
	}
}

// HasContext tells if the list includes c.
func HasContext(list []string, c string) bool {
	for _, s := range list {
		if s == c {
			return true
		}
	}
	return false
}
