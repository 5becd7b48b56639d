package custodian

import (
	"slices"
	"testing"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/acapy/acapytest"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/core"
	"github.com/lainio/err2/assert"
)

func TestReconciler_Run(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	w := mustCreate("BPNL000000000401")

	orphan, err := agent.CreateSubWallet(ctx, acapy.NewCreateSubWallet("ORPHAN", "orphan", "key"))
	assert.NoError(err)
	defer func() {
		_, _ = agent.DeleteSubWallet(ctx, orphan.WalletID, "key")
	}()

	missing := &ssi.Wallet{
		BPN:       "BPNL000000000402",
		DID:       "did:sov:missing402",
		Name:      "record only",
		CreatedAt: time.Now().UTC(),
		WalletID:  "no-such-sub-wallet",
	}
	assert.NoError(store.Insert(ctx, missing))
	defer func() { _, _ = store.Delete(ctx, missing.BPN) }()

	rep, err := cust.Reconciler.Run(ctx)
	assert.NoError(err)
	assert.ThatNot(rep.Consistent())
	assert.That(rep.Records > 0)
	assert.That(rep.SubWallets > 0)
	assert.That(slices.Contains(rep.Orphans, OrphanSubWallet{WalletID: orphan.WalletID, Name: "ORPHAN"}))
	assert.That(slices.Contains(rep.MissingInAgent, missing.BPN))
	assert.ThatNot(slices.Contains(rep.MissingInAgent, w.BPN))
}

func TestReconciler_AgentFailure(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	agent.Fail("GetWallets", acapytest.ErrInjected)
	defer agent.Fail("GetWallets", nil)

	_, err := cust.Reconciler.Run(ctx)
	assert.Equal(core.KindOf(err), core.Upstream)
}
