/*
Package custodian implements the orchestration of the hosted wallets: the
wallet lifecycle, the DID document service endpoints, credentials and
presentations, message signing and the reconciliation audit.

Every operation resolves the wallet from the WalletStore and then calls the
identity agent and the store in a fixed order. Remote steps run before local
writes on create paths and before local deletes on delete paths, so the local
store tells which wallets still need cleanup. Errors are core.Error values.
*/
package custodian

import (
	"context"
	"errors"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/core"
	"github.com/findy-network/findy-custodian/enclave"
)

// Keys is the custody of the sub-wallet keys.
type Keys interface {
	NewWalletKey(bpn string) (string, error)
	WalletKeyByBPN(bpn string) (string, error)
	RemoveWalletKey(bpn string) error
}

// Policy tells which wallets don't allow service endpoint mutations and which
// wallet is the root wallet of the service.
type Policy interface {
	WalletReadOnly(bpn string) bool
	RootBPN() string
}

// EnclaveKeys is the Keys of the enclave package. The sealed box must be
// initialized with enclave.InitSealedBox.
type EnclaveKeys struct{}

func (EnclaveKeys) NewWalletKey(bpn string) (string, error) {
	return enclave.NewWalletKey(bpn)
}

func (EnclaveKeys) WalletKeyByBPN(bpn string) (string, error) {
	return enclave.WalletKeyByBPN(bpn)
}

func (EnclaveKeys) RemoveWalletKey(bpn string) error {
	return enclave.RemoveWalletKey(bpn)
}

// Custodian bundles the orchestration components over the same agent and
// store.
type Custodian struct {
	Wallets     *Wallets
	Services    *Services
	Credentials *Credentials
	Signer      *Signer
	Reconciler  *Reconciler
}

// New builds every component.
func New(agent acapy.Client, store api.WalletStore, keys Keys, policy Policy) *Custodian {
	return &Custodian{
		Wallets:     NewWallets(agent, store, keys),
		Services:    NewServices(agent, store, policy),
		Credentials: NewCredentials(agent, store, policy),
		Signer:      NewSigner(agent, store),
		Reconciler:  NewReconciler(agent, store),
	}
}

// findWallet resolves the wallet by BPN or DID.
func findWallet(ctx context.Context, store api.WalletStore, op, identifier string) (*ssi.Wallet, error) {
	if identifier == "" {
		return nil, core.SyntaxErr(op, "wallet identifier is required")
	}
	w, err := store.FindByBPNOrDID(ctx, identifier)
	if errors.Is(err, api.ErrNotFound) {
		return nil, core.NotFoundErr(op, identifier,
			"Wallet with identifier %s not found", identifier)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
