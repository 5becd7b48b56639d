/*
Package mgddb implements the WalletStore on a managed bolt DB file. Values and
index keys are encrypted and hashed when a key is given. The wallet bucket is
keyed by BPN and a second bucket indexes DIDs to BPNs.
*/
package mgddb

import (
	"context"
	"sync"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	bucketWallet byte = 0 + iota
	bucketDIDIndex
)

// Store is the bolt WalletStore.
type Store struct {
	// writes are read-modify-write sequences over two buckets
	sync.Mutex

	*provider
}

var _ api.WalletStore = (*Store)(nil)

// New opens the store. The key is the hex encoded cipher key, empty for plain
// storage (tests).
func New(filename, key string) (s *Store, err error) {
	defer err2.Handle(&err)

	p := try.To1(newProvider(filename, key, bucketWallet, bucketDIDIndex))
	return &Store{provider: p}, nil
}

func (s *Store) Close() error {
	return s.close()
}

// Backup copies the store aside by the configured backup name.
func (s *Store) Backup() error {
	s.Lock()
	defer s.Unlock()
	return s.backup()
}

func (s *Store) FindByBPNOrDID(_ context.Context, identifier string) (w *ssi.Wallet, err error) {
	defer err2.Handle(&err, "find wallet")

	w, found := try.To2(s.find(identifier))
	if !found {
		return nil, api.ErrNotFound
	}
	return w, nil
}

func (s *Store) find(identifier string) (w *ssi.Wallet, found bool, err error) {
	defer err2.Handle(&err)

	w, found = try.To2(s.getWallet(identifier))
	if found {
		return w, true, nil
	}
	bpn, found := try.To2(s.getData(bucketDIDIndex, []byte(identifier)))
	if !found {
		return nil, false, nil
	}
	return s.getWallet(string(bpn))
}

func (s *Store) getWallet(bpn string) (w *ssi.Wallet, found bool, err error) {
	defer err2.Handle(&err)

	data, found := try.To2(s.getData(bucketWallet, []byte(bpn)))
	if !found {
		return nil, false, nil
	}
	w = new(ssi.Wallet)
	dto.FromJSON(data, w)
	return w, true, nil
}

func (s *Store) putWallet(w *ssi.Wallet) error {
	return s.addData(bucketWallet, []byte(w.BPN), dto.ToJSONBytes(w))
}

func (s *Store) Insert(_ context.Context, w *ssi.Wallet) (err error) {
	defer err2.Handle(&err, "insert wallet")

	s.Lock()
	defer s.Unlock()

	// BPNs and DIDs are unique within their own index only
	if _, found := try.To2(s.getWallet(w.BPN)); found {
		return api.ErrConflict
	}
	if _, found := try.To2(s.getData(bucketDIDIndex, []byte(w.DID))); found {
		return api.ErrConflict
	}
	try.To(s.putWallet(w))
	try.To(s.addData(bucketDIDIndex, []byte(w.DID), []byte(w.BPN)))
	glog.V(2).Infoln("wallet stored:", w.BPN)
	return nil
}

func (s *Store) Delete(_ context.Context, identifier string) (ok bool, err error) {
	defer err2.Handle(&err, "delete wallet")

	s.Lock()
	defer s.Unlock()

	w, found := try.To2(s.find(identifier))
	if !found {
		return false, api.ErrNotFound
	}
	try.To(s.deleteData(bucketDIDIndex, []byte(w.DID)))
	try.To(s.deleteData(bucketWallet, []byte(w.BPN)))
	glog.V(2).Infoln("wallet removed:", w.BPN)
	return true, nil
}

func (s *Store) ListAll(_ context.Context, withCredentials bool) (l []ssi.Wallet, err error) {
	defer err2.Handle(&err, "list wallets")

	all := try.To1(s.getAll(bucketWallet))
	l = make([]ssi.Wallet, 0, len(all))
	for _, data := range all {
		var w ssi.Wallet
		dto.FromJSON(data, &w)
		if !withCredentials {
			w.Credentials = nil
		}
		l = append(l, w)
	}
	return l, nil
}

func (s *Store) AppendCredential(
	_ context.Context,
	identifier string,
	vc ssi.VerifiableCredential,
) (
	err error,
) {
	defer err2.Handle(&err, "append credential")

	s.Lock()
	defer s.Unlock()

	w, found := try.To2(s.find(identifier))
	if !found {
		return api.ErrNotFound
	}
	w.Credentials = append(w.Credentials, vc)
	return s.putWallet(w)
}
