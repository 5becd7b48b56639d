package mgddb

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

const (
	dbFilename = "wallets_test.bolt"
	// key must be set from production environment, SHA-256, 32 bytes
	hexKey = "15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c"
)

var store *Store

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	try.To(flag.Set("logtostderr", "true"))
	_ = os.RemoveAll(dbFilename)
	store = try.To1(New(dbFilename, hexKey))
}

func tearDown() {
	_ = store.Close()
	_ = os.RemoveAll(dbFilename)
	_ = os.RemoveAll(dbFilename + "_backup")
}

func newWallet(bpn string) *ssi.Wallet {
	return &ssi.Wallet{
		BPN:       bpn,
		DID:       "did:sov:" + bpn + "did",
		Name:      "name of " + bpn,
		CreatedAt: time.Now().UTC(),
		PublicKey: "FyfKP2HvTKqDZQzvyL38yXH7bExmwofxHf2NR5BrcGf1",
		WalletID:  "wallet-" + bpn,
		Token:     "token-" + bpn,
	}
}

func TestInsertAndFind(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	w := newWallet("BPN_FIND")
	assert.NoError(store.Insert(ctx, w))

	byBPN, err := store.FindByBPNOrDID(ctx, w.BPN)
	assert.NoError(err)
	byDID, err := store.FindByBPNOrDID(ctx, w.DID)
	assert.NoError(err)
	assert.DeepEqual(byBPN, byDID)
	assert.Equal(byBPN.Token, "token-BPN_FIND")

	_, err = store.FindByBPNOrDID(ctx, "BPN_NOT_THERE")
	assert.That(errors.Is(err, api.ErrNotFound))
}

func TestInsertDuplicate(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	w := newWallet("BPN_DUP")
	assert.NoError(store.Insert(ctx, w))

	err := store.Insert(ctx, w)
	assert.That(errors.Is(err, api.ErrConflict))

	other := newWallet("BPN_DUP2")
	other.DID = w.DID
	err = store.Insert(ctx, other)
	assert.That(errors.Is(err, api.ErrConflict))
}

func TestInsertBPNOfOtherDID(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	w := newWallet("BPN_DIDNAMED")
	assert.NoError(store.Insert(ctx, w))

	named := newWallet(w.DID)
	assert.NoError(store.Insert(ctx, named))

	got, err := store.FindByBPNOrDID(ctx, w.DID)
	assert.NoError(err)
	assert.Equal(got.BPN, w.DID)
	got, err = store.FindByBPNOrDID(ctx, w.BPN)
	assert.NoError(err)
	assert.Equal(got.DID, w.DID)
}

func TestConcurrentInsert(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Insert(ctx, newWallet("BPN_RACE"))
			if errors.Is(err, api.ErrConflict) {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(conflicts, n-1)
}

func TestDelete(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	w := newWallet("BPN_DEL")
	assert.NoError(store.Insert(ctx, w))

	ok, err := store.Delete(ctx, w.DID)
	assert.NoError(err)
	assert.That(ok)

	_, err = store.FindByBPNOrDID(ctx, w.BPN)
	assert.That(errors.Is(err, api.ErrNotFound))
	_, err = store.FindByBPNOrDID(ctx, w.DID)
	assert.That(errors.Is(err, api.ErrNotFound))

	ok, err = store.Delete(ctx, w.BPN)
	assert.ThatNot(ok)
	assert.That(errors.Is(err, api.ErrNotFound))
}

func TestAppendCredentialAndList(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	w := newWallet("BPN_VC")
	assert.NoError(store.Insert(ctx, w))

	for i := 0; i < 3; i++ {
		assert.NoError(store.AppendCredential(ctx, w.BPN, ssi.VerifiableCredential{
			Context: []string{ssi.CredentialsContext},
			ID:      fmt.Sprintf("http://example.edu/credentials/%d", i),
			Type:    []string{ssi.TypeVerifiableCredential},
			Issuer:  "did:sov:issuer",
			CredentialSubject: map[string]any{
				"id": w.DID,
			},
		}))
	}
	got, err := store.FindByBPNOrDID(ctx, w.DID)
	assert.NoError(err)
	assert.SLen(got.Credentials, 3)
	assert.Equal(got.Credentials[2].ID, "http://example.edu/credentials/2")

	err = store.AppendCredential(ctx, "BPN_NOT_THERE", ssi.VerifiableCredential{})
	assert.That(errors.Is(err, api.ErrNotFound))

	all, err := store.ListAll(ctx, false)
	assert.NoError(err)
	assert.SNotEmpty(all)
	found := false
	for _, lw := range all {
		assert.SLen(lw.Credentials, 0)
		found = found || lw.BPN == w.BPN
	}
	assert.That(found)

	all, err = store.ListAll(ctx, true)
	assert.NoError(err)
	for _, lw := range all {
		if lw.BPN == w.BPN {
			assert.SLen(lw.Credentials, 3)
		}
	}
}

func TestProviderHandle(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	const filename = "provider_test.bolt"
	defer os.RemoveAll(filename)

	p, err := newProvider(filename, hexKey, bucketWallet)
	assert.NoError(err)
	assert.INotNil(p.db)

	assert.NoError(p.addData(bucketWallet, []byte("BPNL1"), []byte("value")))
	v, found, err := p.getData(bucketWallet, []byte("BPNL1"))
	assert.NoError(err)
	assert.That(found)
	assert.Equal(string(v), "value")

	assert.NoError(p.close())
	assert.INil(p.db)
	assert.NoError(p.close())
}
