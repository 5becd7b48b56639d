package custodian

import (
	"context"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/core"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const opReconcile = "reconcile"

// OrphanSubWallet is a sub-wallet of the agent without a wallet record.
type OrphanSubWallet struct {
	WalletID string `json:"walletId"`
	Name     string `json:"name"`
}

// Report is the result of the reconciliation audit.
type Report struct {
	StartedAt      time.Time         `json:"startedAt"`
	Records        int               `json:"records"`
	SubWallets     int               `json:"subWallets"`
	Orphans        []OrphanSubWallet `json:"orphanSubWallets"`
	MissingInAgent []string          `json:"missingSubWallets"`
}

// Consistent tells if the agent and the store agree.
func (r *Report) Consistent() bool {
	return len(r.Orphans) == 0 && len(r.MissingInAgent) == 0
}

// Reconciler compares the sub-wallets of the agent with the wallet records.
// It only reports, the cleanup is a manual operation.
type Reconciler struct {
	agent acapy.Client
	store api.WalletStore
}

func NewReconciler(agent acapy.Client, store api.WalletStore) *Reconciler {
	return &Reconciler{agent: agent, store: store}
}

// Run executes one audit round.
func (r *Reconciler) Run(ctx context.Context) (rep *Report, err error) {
	defer func(start time.Time) { observe(opReconcile, start, err) }(time.Now())
	defer err2.Handle(&err, func(err error) error {
		return core.UpstreamErr(opReconcile, "", err)
	})

	rep = &Report{
		StartedAt:      time.Now().UTC(),
		Orphans:        make([]OrphanSubWallet, 0),
		MissingInAgent: make([]string, 0),
	}
	subs := try.To1(r.agent.GetWallets(ctx))
	records := try.To1(r.store.ListAll(ctx, false))
	rep.Records = len(records)
	rep.SubWallets = len(subs.Results)

	known := make(map[string]struct{}, len(subs.Results))
	for _, sw := range subs.Results {
		known[sw.WalletID] = struct{}{}
	}
	stored := make(map[string]struct{}, len(records))
	for _, w := range records {
		stored[w.WalletID] = struct{}{}
		if _, ok := known[w.WalletID]; !ok {
			glog.Warningln("audit: wallet", w.BPN, "has no sub-wallet", w.WalletID)
			rep.MissingInAgent = append(rep.MissingInAgent, w.BPN)
		}
	}
	for _, sw := range subs.Results {
		if _, ok := stored[sw.WalletID]; !ok {
			glog.Warningln("audit: orphan sub-wallet", sw.WalletID, sw.Name())
			rep.Orphans = append(rep.Orphans, OrphanSubWallet{
				WalletID: sw.WalletID,
				Name:     sw.Name(),
			})
		}
	}

	auditFindings.WithLabelValues("orphan_sub_wallets").Set(float64(len(rep.Orphans)))
	auditFindings.WithLabelValues("missing_sub_wallets").Set(float64(len(rep.MissingInAgent)))
	glog.V(1).Infof("audit done: %d records, %d sub-wallets, consistent: %v",
		rep.Records, rep.SubWallets, rep.Consistent())
	return rep, nil
}
