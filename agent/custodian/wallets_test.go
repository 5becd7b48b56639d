package custodian

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/acapy/acapytest"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/core"
	"github.com/findy-network/findy-custodian/enclave"
	"github.com/golang/mock/gomock"
	"github.com/lainio/err2/assert"
)

func countBPN(t *testing.T, bpn string) (n int) {
	all, err := store.ListAll(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range all {
		if w.BPN == bpn {
			n++
		}
	}
	return n
}

func TestWallets_Create(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w, err := cust.Wallets.Create(ctx, "BPNL000000000001", "wallet one")
	assert.NoError(err)
	assert.That(strings.HasPrefix(w.DID, "did:sov:"))
	assert.That(ssi.ValidVerKey(w.PublicKey))
	assert.NotEmpty(w.Token)
	assert.NotEmpty(w.WalletID)
	assert.Equal(w.Name, "wallet one")
	assert.ThatNot(w.CreatedAt.IsZero())
	assert.ThatNot(enclave.WalletKeyNotExists(w.BPN))
}

func TestWallets_CreateTwice(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	const bpn = "BPNL000000000002"
	before := agent.WalletCount()

	_, err := cust.Wallets.Create(ctx, bpn, "first")
	assert.NoError(err)
	_, err = cust.Wallets.Create(ctx, bpn, "second")
	assert.Equal(core.KindOf(err), core.Conflict)
	assert.Equal(core.MessageOf(err), "Wallet with given BPN already exists!")

	assert.Equal(countBPN(t, bpn), 1)
	assert.Equal(agent.WalletCount(), before+1)
}

func TestWallets_CreateSyntax(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	calls := agent.CallsTotal()
	_, err := cust.Wallets.Create(ctx, "", "name")
	assert.Equal(core.KindOf(err), core.SyntacticallyInvalid)
	_, err = cust.Wallets.Create(ctx, "BPNL000000000003", "")
	assert.Equal(core.KindOf(err), core.SyntacticallyInvalid)
	assert.Equal(agent.CallsTotal(), calls)
}

func TestWallets_CreateConcurrent(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	const (
		bpn = "BPNL000000000004"
		n   = 6
	)
	var (
		wg                  sync.WaitGroup
		mu                  sync.Mutex
		created, conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cust.Wallets.Create(ctx, bpn, "racer")
			mu.Lock()
			defer mu.Unlock()
			switch core.KindOf(err) {
			case core.KindUnknown:
				if err == nil {
					created++
				}
			case core.Conflict:
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(created, 1)
	assert.Equal(conflicts, n-1)
	assert.Equal(countBPN(t, bpn), 1)
}

func TestWallets_CreateAgentFailure(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	const bpn = "BPNL000000000005"
	before := agent.WalletCount()

	agent.Fail("CreateLocalDID", acapytest.ErrInjected)
	_, err := cust.Wallets.Create(ctx, bpn, "failing")
	agent.Fail("CreateLocalDID", nil)

	assert.Equal(core.KindOf(err), core.Upstream)
	assert.That(errors.Is(err, acapytest.ErrInjected))
	assert.Equal(agent.WalletCount(), before)
	_, err = store.FindByBPNOrDID(ctx, bpn)
	assert.That(errors.Is(err, api.ErrNotFound))
	assert.That(enclave.WalletKeyNotExists(bpn))

	_, err = cust.Wallets.Create(ctx, bpn, "retry")
	assert.NoError(err)
}

func TestWallets_CreateAgentDownNoLocalWrite(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	const bpn = "BPNL000000000006"
	m := acapy.NewMockClient(ctrl)
	m.EXPECT().
		CreateSubWallet(gomock.Any(), gomock.Any()).
		Return(nil, &acapy.StatusError{Code: 503, Status: "503 Service Unavailable"})

	ws := NewWallets(m, store, EnclaveKeys{})
	_, err := ws.Create(ctx, bpn, "agent down")
	assert.Equal(core.KindOf(err), core.Upstream)
	assert.Equal(countBPN(t, bpn), 0)
	assert.That(enclave.WalletKeyNotExists(bpn))
}

// insertFailStore loses every insert like a full disk would.
type insertFailStore struct {
	api.WalletStore
}

func (insertFailStore) Insert(context.Context, *ssi.Wallet) error {
	return errors.New("disk full")
}

func TestWallets_CreateAfterLostRecord(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	const bpn = "BPNL000000000011"
	before := agent.WalletCount()

	lossy := NewWallets(agent, insertFailStore{store}, EnclaveKeys{})
	_, err := lossy.Create(ctx, bpn, "lost")
	assert.Equal(core.KindOf(err), core.Upstream)
	assert.Equal(countBPN(t, bpn), 0)
	assert.Equal(agent.WalletCount(), before+1)
	assert.ThatNot(enclave.WalletKeyNotExists(bpn))

	agent.Fail("DeleteSubWallet", acapytest.ErrInjected)
	_, err = cust.Wallets.Create(ctx, bpn, "retry")
	agent.Fail("DeleteSubWallet", nil)
	assert.Equal(core.KindOf(err), core.Upstream)
	assert.That(strings.Contains(core.MessageOf(err), bpn))
	assert.Equal(agent.WalletCount(), before+1)

	w, err := cust.Wallets.Create(ctx, bpn, "retry")
	assert.NoError(err)
	assert.Equal(w.Name, "retry")
	assert.Equal(countBPN(t, bpn), 1)
	assert.Equal(agent.WalletCount(), before+1)

	_, err = cust.Wallets.Create(ctx, bpn, "again")
	assert.Equal(core.KindOf(err), core.Conflict)
}

func TestWallets_CreateBPNEqualToDID(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	a := mustCreate("BPNL000000000013")
	w, err := cust.Wallets.Create(ctx, a.DID, "named after a DID")
	assert.NoError(err)
	assert.Equal(w.BPN, a.DID)
	assert.NotEqual(w.DID, a.DID)
	assert.Equal(countBPN(t, a.DID), 1)

	got, err := cust.Wallets.Get(ctx, a.BPN, false)
	assert.NoError(err)
	assert.Equal(got.DID, a.DID)
}

func TestWallets_CreateOnNetwork(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	netAgent := acapytest.New("testnet")
	ws := NewWallets(netAgent, store, EnclaveKeys{})

	w, err := ws.Create(ctx, "BPNL000000000007", "published")
	assert.NoError(err)
	assert.That(strings.HasPrefix(w.DID, "did:indy:testnet:"))
	unq, err := ssi.UnqualifiedDID(w.DID)
	assert.NoError(err)
	assert.That(netAgent.Published(unq))
	assert.Equal(netAgent.Calls("AssignDIDToPublic"), 1)
}

func TestWallets_Get(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w := mustCreate("BPNL000000000008")
	byBPN, err := cust.Wallets.Get(ctx, w.BPN, true)
	assert.NoError(err)
	byDID, err := cust.Wallets.Get(ctx, w.DID, true)
	assert.NoError(err)
	assert.DeepEqual(byBPN, byDID)
	assert.Equal(byBPN.PublicKey, w.PublicKey)

	_, err = cust.Wallets.Get(ctx, "BPNL00000000NONE", false)
	assert.Equal(core.KindOf(err), core.NotFound)
	_, err = cust.Wallets.Get(ctx, "", false)
	assert.Equal(core.KindOf(err), core.SyntacticallyInvalid)
}

func TestWallets_GetProjection(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w := mustCreate("BPNL000000000009")
	_, err := cust.Credentials.Store(ctx, w.BPN, ssi.VerifiableCredential{
		ID:                "http://example.edu/credentials/9",
		CredentialSubject: map[string]any{"id": w.DID},
	})
	assert.NoError(err)

	with, err := cust.Wallets.Get(ctx, w.BPN, true)
	assert.NoError(err)
	assert.SLen(with.Credentials, 1)
	without, err := cust.Wallets.Get(ctx, w.BPN, false)
	assert.NoError(err)
	assert.SLen(without.Credentials, 0)

	all, err := cust.Wallets.GetAll(ctx)
	assert.NoError(err)
	assert.SNotEmpty(all)
	for _, v := range all {
		assert.SLen(v.Credentials, 0)
	}
}

func TestWallets_Delete(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	ok, err := cust.Wallets.Delete(ctx, "BPNL00000000NONE")
	assert.ThatNot(ok)
	assert.Equal(core.KindOf(err), core.NotFound)

	w := mustCreate("BPNL000000000010")

	agent.Fail("DeleteSubWallet", acapytest.ErrInjected)
	ok, err = cust.Wallets.Delete(ctx, w.BPN)
	agent.Fail("DeleteSubWallet", nil)
	assert.ThatNot(ok)
	assert.Equal(core.KindOf(err), core.Upstream)
	_, err = cust.Wallets.Get(ctx, w.BPN, false)
	assert.NoError(err)

	before := agent.WalletCount()
	ok, err = cust.Wallets.Delete(ctx, w.DID)
	assert.NoError(err)
	assert.That(ok)
	assert.Equal(agent.WalletCount(), before-1)
	assert.That(enclave.WalletKeyNotExists(w.BPN))

	all, err := cust.Wallets.GetAll(ctx)
	assert.NoError(err)
	for _, v := range all {
		assert.NotEqual(v.BPN, w.BPN)
	}
}

func TestWallets_DeleteKeyMissing(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w := mustCreate("BPNL000000000012")
	assert.NoError(enclave.RemoveWalletKey(w.BPN))

	deletes := agent.Calls("DeleteSubWallet")
	ok, err := cust.Wallets.Delete(ctx, w.BPN)
	assert.ThatNot(ok)
	assert.Equal(core.KindOf(err), core.Upstream)
	assert.That(strings.Contains(core.MessageOf(err), w.BPN))
	assert.That(errors.Is(err, enclave.ErrNotExists))
	assert.Equal(agent.Calls("DeleteSubWallet"), deletes)

	_, err = cust.Wallets.Get(ctx, w.BPN, false)
	assert.NoError(err)
}
