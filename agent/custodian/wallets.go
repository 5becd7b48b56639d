package custodian

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/core"
	"github.com/findy-network/findy-custodian/enclave"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	opCreateWallet = "create wallet"
	opGetWallet    = "get wallet"
	opListWallets  = "list wallets"
	opDeleteWallet = "delete wallet"
)

// Wallets is the wallet lifecycle manager. It provisions the agent sub-wallet
// of each wallet and keeps the local record of it.
type Wallets struct {
	agent acapy.Client
	store api.WalletStore
	keys  Keys

	mu      sync.Mutex
	pending map[string]struct{} // BPNs being created
}

func NewWallets(agent acapy.Client, store api.WalletStore, keys Keys) *Wallets {
	return &Wallets{
		agent:   agent,
		store:   store,
		keys:    keys,
		pending: make(map[string]struct{}),
	}
}

func (ws *Wallets) claim(bpn string) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, busy := ws.pending[bpn]; busy {
		return false
	}
	ws.pending[bpn] = struct{}{}
	return true
}

func (ws *Wallets) release(bpn string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.pending, bpn)
}

func errWalletExists(bpn string) error {
	return core.ConflictErr(opCreateWallet, bpn, "Wallet with given BPN already exists!")
}

// Create provisions a sub-wallet with a local DID for the BPN and stores the
// wallet record. A BPN that is already stored, or being created, is a
// Conflict. Agent failures abort before the record is written. A key left by
// an earlier failed create of the BPN is reclaimed together with its
// sub-wallet.
func (ws *Wallets) Create(ctx context.Context, bpn, name string) (w *ssi.Wallet, err error) {
	defer func(start time.Time) { observe(opCreateWallet, start, err) }(time.Now())

	if bpn == "" {
		return nil, core.SyntaxErr(opCreateWallet, "bpn is required")
	}
	if name == "" {
		return nil, core.SyntaxErr(opCreateWallet, "name is required")
	}

	if !ws.claim(bpn) {
		return nil, errWalletExists(bpn)
	}
	defer ws.release(bpn)

	// the lookup matches DIDs too, only a record of the same BPN is a conflict
	stored, err := ws.store.FindByBPNOrDID(ctx, bpn)
	switch {
	case err == nil && stored.BPN == bpn:
		return nil, errWalletExists(bpn)
	case err != nil && !errors.Is(err, api.ErrNotFound):
		return nil, err
	}

	key, err := ws.keys.NewWalletKey(bpn)
	if errors.Is(err, enclave.ErrKeyExists) {
		key, err = ws.reclaim(ctx, bpn)
	}
	if err != nil {
		return nil, err
	}

	w, err = ws.provision(ctx, bpn, name, key)
	if err != nil {
		if w != nil && w.WalletID != "" {
			ws.discard(ctx, bpn, w.WalletID, key)
		} else {
			ws.removeKey(bpn)
		}
		return nil, err
	}

	w.CreatedAt = time.Now().UTC()
	err = ws.store.Insert(ctx, w)
	if errors.Is(err, api.ErrConflict) {
		ws.discard(ctx, bpn, w.WalletID, key)
		return nil, errWalletExists(bpn)
	}
	if err != nil {
		inconsistencies.Inc()
		glog.Errorln("inconsistency: sub-wallet", w.WalletID, "of", bpn,
			"created but the wallet record was not stored:", err)
		return nil, core.UpstreamErr(opCreateWallet, bpn, err)
	}
	glog.V(1).Infoln("wallet created:", bpn, w.DID)
	return w, nil
}

// reclaim returns the key of an earlier create of the BPN that failed after
// the key was made. The sub-wallets that create left to the agent are removed
// first. The caller holds the claim of the BPN and the BPN has no record.
func (ws *Wallets) reclaim(ctx context.Context, bpn string) (key string, err error) {
	defer err2.Handle(&err, func(err error) error {
		return &core.Error{Kind: core.Upstream, Op: opCreateWallet, ID: bpn,
			Msg: fmt.Sprintf("Cleanup of an earlier create of %s is pending", bpn),
			Err: err}
	})

	key = try.To1(ws.keys.WalletKeyByBPN(bpn))
	subs := try.To1(ws.agent.GetWallets(ctx))
	for _, sw := range subs.Results {
		if sw.Name() != bpn {
			continue
		}
		ok, err := ws.agent.DeleteSubWallet(ctx, sw.WalletID, key)
		if errors.Is(err, acapy.ErrNotFound) {
			continue
		}
		try.To(err)
		if !ok {
			return "", fmt.Errorf("sub-wallet %s not removed", sw.WalletID)
		}
		glog.Infoln("orphan sub-wallet", sw.WalletID, "of", bpn, "removed")
	}
	glog.V(1).Infoln("wallet key of an earlier create reclaimed:", bpn)
	return key, nil
}

// provision runs the agent steps of the create. The returned wallet has the
// WalletID set as soon as the sub-wallet exists, also on error.
func (ws *Wallets) provision(ctx context.Context, bpn, name, key string) (w *ssi.Wallet, err error) {
	defer err2.Handle(&err, func(err error) error {
		return core.UpstreamErr(opCreateWallet, bpn, err)
	})

	sub := try.To1(ws.agent.CreateSubWallet(ctx, acapy.NewCreateSubWallet(bpn, name, key)))
	w = &ssi.Wallet{BPN: bpn, Name: name, WalletID: sub.WalletID}

	w.Token = try.To1(ws.agent.GetToken(ctx, sub.WalletID, key))
	info := try.To1(ws.agent.CreateLocalDID(ctx, acapy.NewDidCreate(), w.Token)).Result
	w.PublicKey = info.Verkey

	network := ws.agent.NetworkIdentifier()
	if network != "" {
		try.To1(ws.agent.RegisterDIDOnLedger(ctx, acapy.DidRegistration{
			Alias:  bpn,
			DID:    info.DID,
			Verkey: info.Verkey,
			Role:   acapy.RoleEndorser,
		}))
		try.To1(ws.agent.AssignDIDToPublic(ctx, info.DID, w.Token))
		glog.V(2).Infoln("DID published:", info.DID, network)
	}
	w.DID = ssi.QualifiedDID(network, info.DID)
	return w, nil
}

// discard removes the sub-wallet of a failed create. If the agent refuses, the
// key is kept so that the next create of the BPN can remove the sub-wallet.
func (ws *Wallets) discard(ctx context.Context, bpn, walletID, key string) {
	ok, err := ws.agent.DeleteSubWallet(ctx, walletID, key)
	if err != nil || !ok {
		inconsistencies.Inc()
		glog.Errorln("inconsistency: orphan sub-wallet", walletID, "of", bpn,
			"left to the agent:", err)
		return
	}
	glog.V(1).Infoln("sub-wallet of failed create removed:", bpn)
	ws.removeKey(bpn)
}

func (ws *Wallets) removeKey(bpn string) {
	if err := ws.keys.RemoveWalletKey(bpn); err != nil {
		glog.Warningln("cannot remove wallet key of", bpn, err)
	}
}

// Get returns the wallet by BPN or DID.
func (ws *Wallets) Get(ctx context.Context, identifier string, withCredentials bool) (v *ssi.WalletView, err error) {
	defer func(start time.Time) { observe(opGetWallet, start, err) }(time.Now())

	w, err := findWallet(ctx, ws.store, opGetWallet, identifier)
	if err != nil {
		return nil, err
	}
	pv := w.Public(withCredentials)
	return &pv, nil
}

// GetAll returns every wallet without credentials.
func (ws *Wallets) GetAll(ctx context.Context) (l []ssi.WalletView, err error) {
	defer func(start time.Time) { observe(opListWallets, start, err) }(time.Now())
	defer err2.Handle(&err, opListWallets)

	all := try.To1(ws.store.ListAll(ctx, false))
	l = make([]ssi.WalletView, 0, len(all))
	for i := range all {
		l = append(l, all[i].Public(false))
	}
	return l, nil
}

// Delete removes the sub-wallet and then the local record. The record is kept
// if the agent fails.
func (ws *Wallets) Delete(ctx context.Context, identifier string) (ok bool, err error) {
	defer func(start time.Time) { observe(opDeleteWallet, start, err) }(time.Now())

	w, err := findWallet(ctx, ws.store, opDeleteWallet, identifier)
	if err != nil {
		return false, err
	}
	key, err := ws.keys.WalletKeyByBPN(w.BPN)
	if errors.Is(err, enclave.ErrNotExists) {
		inconsistencies.Inc()
		glog.Errorln("inconsistency: wallet", w.BPN, "has no key in the enclave")
		return false, &core.Error{Kind: core.Upstream, Op: opDeleteWallet, ID: w.BPN,
			Msg: fmt.Sprintf("the key of wallet %s is missing", w.BPN), Err: err}
	}
	if err != nil {
		return false, core.UpstreamErr(opDeleteWallet, w.BPN, err)
	}

	removed, err := ws.agent.DeleteSubWallet(ctx, w.WalletID, key)
	switch {
	case errors.Is(err, acapy.ErrNotFound):
		glog.Warningln("sub-wallet of", w.BPN, "was already removed from the agent")
	case err != nil:
		return false, core.UpstreamErr(opDeleteWallet, identifier, err)
	case !removed:
		return false, &core.Error{Kind: core.Upstream, Op: opDeleteWallet, ID: identifier,
			Msg: "the agent did not remove the sub-wallet"}
	}

	if _, err = ws.store.Delete(ctx, w.BPN); err != nil {
		inconsistencies.Inc()
		glog.Errorln("inconsistency: sub-wallet of", w.BPN,
			"removed but the wallet record was not:", err)
		return false, core.UpstreamErr(opDeleteWallet, identifier, err)
	}
	ws.removeKey(w.BPN)
	glog.V(1).Infoln("wallet removed:", w.BPN)
	return true, nil
}
