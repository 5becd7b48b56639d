// Package ssi holds the SSI data model of the custodian: wallets, DID
// documents and their service entries, credentials and presentations.
package ssi

import (
	"time"
)

// Wallet is the local record of a hosted wallet. BPN is the stable key and DID
// is assigned once at creation. Token and WalletID are agent capabilities and
// never leave the service, see Public.
type Wallet struct {
	BPN         string                 `json:"bpn"`
	DID         string                 `json:"did"`
	Name        string                 `json:"name"`
	CreatedAt   time.Time              `json:"createdAt"`
	PublicKey   string                 `json:"verKey,omitempty"`
	WalletID    string                 `json:"walletId,omitempty"`
	Token       string                 `json:"token,omitempty"`
	Credentials []VerifiableCredential `json:"vcs,omitempty"`
}

// WalletView is the read projection of the Wallet.
type WalletView struct {
	BPN         string                 `json:"bpn"`
	DID         string                 `json:"did"`
	Name        string                 `json:"name"`
	CreatedAt   time.Time              `json:"createdAt"`
	PublicKey   string                 `json:"verKey,omitempty"`
	Credentials []VerifiableCredential `json:"vcs"`
}

// Public returns the projection of the wallet without agent capabilities.
// Credentials are included only when withCredentials is true.
func (w *Wallet) Public(withCredentials bool) WalletView {
	v := WalletView{
		BPN:         w.BPN,
		DID:         w.DID,
		Name:        w.Name,
		CreatedAt:   w.CreatedAt,
		PublicKey:   w.PublicKey,
		Credentials: []VerifiableCredential{},
	}
	if withCredentials && len(w.Credentials) > 0 {
		v.Credentials = append(v.Credentials, w.Credentials...)
	}
	return v
}

// Matches tells if the identifier is the BPN or the DID of the wallet.
func (w *Wallet) Matches(identifier string) bool {
	return identifier != "" && (w.BPN == identifier || w.DID == identifier)
}

// Clone returns a deep enough copy for the stores: credentials are immutable
// once stored so the slice header is the only thing copied.
func (w *Wallet) Clone() *Wallet {
	c := *w
	if w.Credentials != nil {
		c.Credentials = append([]VerifiableCredential(nil), w.Credentials...)
	}
	return &c
}
