package custodian

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/core"
	"github.com/golang/glog"
)

const (
	opResolve       = "resolve DID document"
	opAddService    = "add service"
	opUpdateService = "update service"
	opRemoveService = "remove service"
)

// Services manages the service endpoints of the wallets' DID documents. The
// checks run in a fixed order: wallet existence, wallet capability, type rule,
// entry existence or uniqueness, and only then the agent call.
type Services struct {
	agent  acapy.Client
	store  api.WalletStore
	policy Policy
}

func NewServices(agent acapy.Client, store api.WalletStore, policy Policy) *Services {
	return &Services{agent: agent, store: store, policy: policy}
}

// Resolve returns the DID document of the wallet.
func (s *Services) Resolve(ctx context.Context, identifier string) (doc *ssi.DIDDocument, err error) {
	defer func(start time.Time) { observe(opResolve, start, err) }(time.Now())

	w, err := findWallet(ctx, s.store, opResolve, identifier)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, opResolve, w)
}

func (s *Services) resolve(ctx context.Context, op string, w *ssi.Wallet) (*ssi.DIDDocument, error) {
	r, err := s.agent.ResolveDIDDocument(ctx, w.DID, w.Token)
	if errors.Is(err, acapy.ErrNotFound) || (err == nil && r.DIDDocument.ID == "") {
		return nil, core.NotFoundErr(op, w.DID, "DID document of %s not found", w.DID)
	}
	if err != nil {
		return nil, core.UpstreamErr(op, w.DID, err)
	}
	return &r.DIDDocument, nil
}

// mutableWallet resolves the wallet and checks that its services can be
// changed at all.
func (s *Services) mutableWallet(ctx context.Context, op, identifier string) (*ssi.Wallet, error) {
	w, err := findWallet(ctx, s.store, op, identifier)
	if err != nil {
		return nil, err
	}
	if s.policy != nil && s.policy.WalletReadOnly(w.BPN) {
		return nil, core.NotImplementedErr(op, identifier,
			"Update Service Endpoint is not supported for the wallet %s", identifier)
	}
	return w, nil
}

func checkRule(op string, t ssi.ServiceType, o ssi.Op, typeName string) error {
	if !t.Permits(o) {
		return core.NotImplementedErr(op, typeName,
			"%s of service type %s is not supported", o, typeName)
	}
	return nil
}

func validEndpoint(op, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return core.SyntaxErr(op, "serviceEndpoint must be an absolute URL: %q", endpoint)
	}
	return nil
}

// Add writes a new service entry to the wallet's DID document and returns the
// updated document. Entries are unique by id. The agent keeps one endpoint
// per type, so a type that is already present is a conflict as well.
func (s *Services) Add(ctx context.Context, identifier string, entry ssi.ServiceEntry) (doc *ssi.DIDDocument, err error) {
	defer func(start time.Time) { observe(opAddService, start, err) }(time.Now())

	if entry.ID == "" || entry.Type == "" {
		return nil, core.SyntaxErr(opAddService, "service id and type are required")
	}
	if err = validEndpoint(opAddService, entry.ServiceEndpoint); err != nil {
		return nil, err
	}

	w, err := s.mutableWallet(ctx, opAddService, identifier)
	if err != nil {
		return nil, err
	}
	t := entry.ServiceType()
	if err = checkRule(opAddService, t, ssi.OpAdd, entry.Type); err != nil {
		return nil, err
	}

	doc, err = s.resolve(ctx, opAddService, w)
	if err != nil {
		return nil, err
	}
	if _, exists := doc.FindService(entry.ID); exists {
		return nil, core.ConflictErr(opAddService, entry.ID,
			"Service with id %s already exists", entry.ID)
	}
	if t.Rule(ssi.OpAdd) == ssi.Once && doc.CountType(t) > 0 {
		return nil, core.ConflictErr(opAddService, entry.Type,
			"Service of type %s already exists in the DID document", entry.Type)
	}

	if err = s.write(ctx, opAddService, w, t, entry.ServiceEndpoint); err != nil {
		return nil, err
	}
	glog.V(1).Infoln("service added:", w.BPN, entry.Type)
	return s.resolve(ctx, opAddService, w)
}

// Update changes the endpoint of an existing entry. The patch type must be
// the type of the entry.
func (s *Services) Update(
	ctx context.Context,
	identifier, serviceID string,
	patch ssi.ServicePatch,
) (
	doc *ssi.DIDDocument,
	err error,
) {
	defer func(start time.Time) { observe(opUpdateService, start, err) }(time.Now())

	if serviceID == "" || patch.Type == "" {
		return nil, core.SyntaxErr(opUpdateService, "service id and type are required")
	}
	if err = validEndpoint(opUpdateService, patch.ServiceEndpoint); err != nil {
		return nil, err
	}

	w, err := s.mutableWallet(ctx, opUpdateService, identifier)
	if err != nil {
		return nil, err
	}
	t := ssi.ParseServiceType(patch.Type)
	if err = checkRule(opUpdateService, t, ssi.OpUpdate, patch.Type); err != nil {
		return nil, err
	}

	doc, err = s.resolve(ctx, opUpdateService, w)
	if err != nil {
		return nil, err
	}
	existing, found := doc.FindService(serviceID)
	if !found {
		return nil, core.NotFoundErr(opUpdateService, serviceID,
			"Service with id %s not found in the DID document of %s", serviceID, identifier)
	}
	if existing.ResolvedType() != t {
		return nil, core.SemanticErr(opUpdateService, serviceID,
			"Service %s is of type %s, not %s", serviceID, existing.Type, patch.Type)
	}

	if err = s.write(ctx, opUpdateService, w, t, patch.ServiceEndpoint); err != nil {
		return nil, err
	}
	glog.V(1).Infoln("service updated:", w.BPN, serviceID)
	return s.resolve(ctx, opUpdateService, w)
}

// Remove checks the removal of the entry. No service type supports removal
// yet, so every call that passes the wallet checks ends in NotImplemented.
func (s *Services) Remove(ctx context.Context, identifier, serviceID string) (err error) {
	defer func(start time.Time) { observe(opRemoveService, start, err) }(time.Now())

	if serviceID == "" {
		return core.SyntaxErr(opRemoveService, "service id is required")
	}
	w, err := s.mutableWallet(ctx, opRemoveService, identifier)
	if err != nil {
		return err
	}

	t := ssi.ParseServiceType(serviceID)
	if err = checkRule(opRemoveService, t, ssi.OpRemove, serviceID); err != nil {
		glog.V(3).Infoln("service remove refused:", w.BPN, serviceID)
		return err
	}
	return core.NotImplementedErr(opRemoveService, serviceID,
		"remove of service %s is not supported", serviceID)
}

func (s *Services) write(ctx context.Context, op string, w *ssi.Wallet, t ssi.ServiceType, endpoint string) error {
	did, err := ssi.UnqualifiedDID(w.DID)
	if err != nil {
		return core.UpstreamErr(op, w.DID, err)
	}
	ok, err := s.agent.UpdateServiceEndpoint(ctx, acapy.DidEndpointWithType{
		DIDIdentifier: did,
		Endpoint:      endpoint,
		EndpointType:  t.AgentType(),
	}, w.Token)
	if err != nil {
		return core.UpstreamErr(op, w.DID, err)
	}
	if !ok {
		return &core.Error{Kind: core.Upstream, Op: op, ID: w.DID,
			Msg: "the agent did not update the service endpoint"}
	}
	return nil
}
