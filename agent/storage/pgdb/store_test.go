//go:build integration

package pgdb

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
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	store     *Store
	container *tcpostgres.PostgresContainer
)

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	try.To(flag.Set("logtostderr", "true"))
	ctx := context.Background()

	container = try.To1(tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("custodian"),
		tcpostgres.WithUsername("custodian"),
		tcpostgres.WithPassword("custodian"),
		tcpostgres.BasicWaitStrategies(),
	))
	url := try.To1(container.ConnectionString(ctx, "sslmode=disable"))
	store = try.To1(New(ctx, url))
}

func tearDown() {
	if store != nil {
		_ = store.Close()
	}
	_ = testcontainers.TerminateContainer(container)
}

func newWallet(bpn string) *ssi.Wallet {
	return &ssi.Wallet{
		BPN:       bpn,
		DID:       "did:sov:" + bpn + "did",
		Name:      "name of " + bpn,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
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
	assert.Equal(byBPN.BPN, byDID.BPN)
	assert.Equal(byBPN.Token, "token-BPN_FIND")
	assert.That(byBPN.CreatedAt.Equal(w.CreatedAt))

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

func TestDeleteCascades(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	w := newWallet("BPN_DEL")
	assert.NoError(store.Insert(ctx, w))
	assert.NoError(store.AppendCredential(ctx, w.BPN, ssi.VerifiableCredential{
		ID: "http://example.edu/credentials/del",
	}))

	ok, err := store.Delete(ctx, w.DID)
	assert.NoError(err)
	assert.That(ok)

	_, err = store.FindByBPNOrDID(ctx, w.BPN)
	assert.That(errors.Is(err, api.ErrNotFound))

	ok, err = store.Delete(ctx, w.BPN)
	assert.ThatNot(ok)
	assert.That(errors.Is(err, api.ErrNotFound))

	// same BPN can be created again and starts without credentials
	assert.NoError(store.Insert(ctx, w))
	got, err := store.FindByBPNOrDID(ctx, w.BPN)
	assert.NoError(err)
	assert.SLen(got.Credentials, 0)
}

func TestAppendCredentialAndList(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	w := newWallet("BPN_VC")
	assert.NoError(store.Insert(ctx, w))

	for i := 0; i < 3; i++ {
		assert.NoError(store.AppendCredential(ctx, w.DID, ssi.VerifiableCredential{
			Context: []string{ssi.CredentialsContext},
			ID:      fmt.Sprintf("http://example.edu/credentials/%d", i),
			Type:    []string{ssi.TypeVerifiableCredential},
			Issuer:  "did:sov:issuer",
			CredentialSubject: map[string]any{
				"id": w.DID,
			},
		}))
	}
	got, err := store.FindByBPNOrDID(ctx, w.BPN)
	assert.NoError(err)
	assert.SLen(got.Credentials, 3)
	assert.Equal(got.Credentials[2].ID, "http://example.edu/credentials/2")

	err = store.AppendCredential(ctx, "BPN_NOT_THERE", ssi.VerifiableCredential{})
	assert.That(errors.Is(err, api.ErrNotFound))

	all, err := store.ListAll(ctx, false)
	assert.NoError(err)
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
