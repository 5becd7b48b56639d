package custodian

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/findy-network/findy-custodian/core"
	"github.com/golang/glog"
)

const (
	opStoreCredential    = "store credential"
	opIssueCredential    = "issue credential"
	opCreatePresentation = "create presentation"
	opVerifyCredential   = "verify credential"
	opVerifyPresentation = "verify presentation"
)

// IssueRequest is the unsigned credential to issue. The issuer and the
// optional holder are wallet identifiers, BPN or DID.
type IssueRequest struct {
	ID                string         `json:"id,omitempty"`
	Context           []string       `json:"@context"`
	Type              []string       `json:"type"`
	IssuerIdentifier  string         `json:"issuerIdentifier"`
	HolderIdentifier  string         `json:"holderIdentifier,omitempty"`
	IssuanceDate      *time.Time     `json:"issuanceDate,omitempty"`
	ExpirationDate    *time.Time     `json:"expirationDate,omitempty"`
	CredentialSubject map[string]any `json:"credentialSubject"`
}

// PresentationRequest lists the credentials the holder presents.
type PresentationRequest struct {
	HolderIdentifier      string                     `json:"holderIdentifier"`
	VerifiableCredentials []ssi.VerifiableCredential `json:"verifiableCredentials"`
}

// Credentials stores and issues credentials and builds presentations. All
// signing and verification is done by the agent with the wallet's token.
type Credentials struct {
	agent  acapy.Client
	store  api.WalletStore
	policy Policy

	now func() time.Time
}

func NewCredentials(agent acapy.Client, store api.WalletStore, policy Policy) *Credentials {
	return &Credentials{
		agent:  agent,
		store:  store,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Store appends the credential to the wallet. The credential subject must be
// the wallet's DID when the subject has an id.
func (c *Credentials) Store(ctx context.Context, identifier string, vc ssi.VerifiableCredential) (msg string, err error) {
	defer func(start time.Time) { observe(opStoreCredential, start, err) }(time.Now())

	w, err := findWallet(ctx, c.store, opStoreCredential, identifier)
	if err != nil {
		return "", err
	}
	if sub := vc.SubjectID(); sub != "" && sub != w.DID {
		return "", core.SemanticErr(opStoreCredential, identifier,
			"Credential subject %s does not match the DID %s of the wallet", sub, w.DID)
	}

	err = c.store.AppendCredential(ctx, w.BPN, vc)
	if errors.Is(err, api.ErrNotFound) {
		return "", core.NotFoundErr(opStoreCredential, identifier,
			"Wallet with identifier %s not found", identifier)
	}
	if err != nil {
		return "", err
	}
	glog.V(1).Infoln("credential stored:", w.BPN, vc.ID)
	return "Credential with id " + vc.ID + " has been successfully stored", nil
}

func validIssueRequest(r *IssueRequest) error {
	switch {
	case len(r.Context) == 0:
		return core.SemanticErr(opIssueCredential, "", "@context is required")
	case r.Context[0] != ssi.CredentialsContext:
		return core.SemanticErr(opIssueCredential, "",
			"the first @context must be %s", ssi.CredentialsContext)
	case len(r.Type) == 0:
		return core.SemanticErr(opIssueCredential, "", "type is required")
	case r.IssuerIdentifier == "":
		return core.SemanticErr(opIssueCredential, "", "issuerIdentifier is required")
	case len(r.CredentialSubject) == 0:
		return core.SemanticErr(opIssueCredential, "", "credentialSubject is required")
	}
	return nil
}

// Issue builds the credential, signs it with the issuer wallet and returns it.
func (c *Credentials) Issue(ctx context.Context, r IssueRequest) (vc *ssi.VerifiableCredential, err error) {
	defer func(start time.Time) { observe(opIssueCredential, start, err) }(time.Now())

	if err = validIssueRequest(&r); err != nil {
		return nil, err
	}
	issuer, err := findWallet(ctx, c.store, opIssueCredential, r.IssuerIdentifier)
	if err != nil {
		return nil, err
	}

	subject := make(map[string]any, len(r.CredentialSubject)+1)
	for k, v := range r.CredentialSubject {
		subject[k] = v
	}
	if r.HolderIdentifier != "" {
		holder, err := findWallet(ctx, c.store, opIssueCredential, r.HolderIdentifier)
		if err != nil {
			return nil, err
		}
		if _, has := subject["id"]; !has {
			subject["id"] = holder.DID
		}
	}

	unsigned := ssi.VerifiableCredential{
		Context:           r.Context,
		ID:                r.ID,
		Type:              r.Type,
		Issuer:            issuer.DID,
		IssuanceDate:      r.IssuanceDate,
		ExpirationDate:    r.ExpirationDate,
		CredentialSubject: subject,
	}
	if unsigned.ID == "" {
		unsigned.ID = utils.URNUUID()
	}
	if unsigned.IssuanceDate == nil {
		now := c.now()
		unsigned.IssuanceDate = &now
	}

	vc = new(ssi.VerifiableCredential)
	if err = c.sign(ctx, opIssueCredential, issuer, unsigned, ssi.PurposeAssertionMethod, vc); err != nil {
		return nil, err
	}
	if vc.Proof == nil {
		return nil, &core.Error{Kind: core.Upstream, Op: opIssueCredential, ID: unsigned.ID,
			Msg: "the agent returned the credential without a proof"}
	}
	glog.V(1).Infoln("credential issued:", unsigned.ID, "by", issuer.BPN)
	return vc, nil
}

// Present builds the presentation of the credentials and signs it with the
// holder wallet. With verify every credential must be valid and unexpired.
func (c *Credentials) Present(
	ctx context.Context,
	r PresentationRequest,
	verify bool,
) (
	vp *ssi.VerifiablePresentation,
	err error,
) {
	defer func(start time.Time) { observe(opCreatePresentation, start, err) }(time.Now())

	holder, err := findWallet(ctx, c.store, opCreatePresentation, r.HolderIdentifier)
	if err != nil {
		return nil, err
	}
	if verify {
		for i := range r.VerifiableCredentials {
			vc := &r.VerifiableCredentials[i]
			if err = c.verifyCredential(ctx, opCreatePresentation, holder, vc); err != nil {
				return nil, err
			}
		}
	}

	unsigned := ssi.NewPresentation(utils.URNUUID(), holder.DID, r.VerifiableCredentials)
	vp = new(ssi.VerifiablePresentation)
	if err = c.sign(ctx, opCreatePresentation, holder, unsigned, ssi.PurposeAuthentication, vp); err != nil {
		return nil, err
	}
	if vp.Proof == nil {
		return nil, &core.Error{Kind: core.Upstream, Op: opCreatePresentation, ID: unsigned.ID,
			Msg: "the agent returned the presentation without a proof"}
	}
	glog.V(1).Infoln("presentation created:", unsigned.ID, "by", holder.BPN)
	return vp, nil
}

// VerifyCredential checks the proof and the expiration of the credential. The
// agent call uses the issuer's wallet when it's hosted here and the root
// wallet otherwise.
func (c *Credentials) VerifyCredential(ctx context.Context, vc ssi.VerifiableCredential) (err error) {
	defer func(start time.Time) { observe(opVerifyCredential, start, err) }(time.Now())

	w, err := c.verifierWallet(ctx, opVerifyCredential, vc.Issuer)
	if err != nil {
		return err
	}
	return c.verifyCredential(ctx, opVerifyCredential, w, &vc)
}

// VerifyPresentation checks the holder's proof and every included credential.
func (c *Credentials) VerifyPresentation(ctx context.Context, vp ssi.VerifiablePresentation) (err error) {
	defer func(start time.Time) { observe(opVerifyPresentation, start, err) }(time.Now())

	w, err := c.verifierWallet(ctx, opVerifyPresentation, vp.Holder)
	if err != nil {
		return err
	}
	for i := range vp.VerifiableCredential {
		if err = c.verifyCredential(ctx, opVerifyPresentation, w, &vp.VerifiableCredential[i]); err != nil {
			return err
		}
	}
	if vp.Proof == nil {
		return core.SemanticErr(opVerifyPresentation, vp.ID, "presentation has no proof")
	}
	return c.verifyDoc(ctx, opVerifyPresentation, w, vp, vp.ID, vp.Holder, vp.Proof)
}

func (c *Credentials) verifierWallet(ctx context.Context, op, did string) (*ssi.Wallet, error) {
	if did != "" {
		if w, err := c.store.FindByBPNOrDID(ctx, did); err == nil {
			return w, nil
		}
	}
	root := ""
	if c.policy != nil {
		root = c.policy.RootBPN()
	}
	if root == "" {
		return nil, core.NotFoundErr(op, did, "no wallet available to verify documents of %s", did)
	}
	return findWallet(ctx, c.store, op, root)
}

func (c *Credentials) verifyCredential(ctx context.Context, op string, w *ssi.Wallet, vc *ssi.VerifiableCredential) error {
	if vc.Proof == nil {
		return core.SemanticErr(op, vc.ID, "Credential %s has no proof", vc.ID)
	}
	if vc.Expired(c.now()) {
		return core.SemanticErr(op, vc.ID, "Credential %s has expired", vc.ID)
	}
	return c.verifyDoc(ctx, op, w, vc, vc.ID, vc.Issuer, vc.Proof)
}

func (c *Credentials) verifyDoc(
	ctx context.Context,
	op string,
	w *ssi.Wallet,
	doc any,
	docID, signer string,
	proof *ssi.Proof,
) error {
	verkey, err := c.signerKey(ctx, op, w, signer, proof)
	if err != nil {
		return err
	}
	r, err := c.agent.VerifyJSONLD(ctx, acapy.VerifyRequest{Doc: doc, Verkey: verkey}, w.Token)
	if err != nil {
		return core.UpstreamErr(op, docID, err)
	}
	if !r.Valid {
		return core.SemanticErr(op, docID, "Document %s is not valid: %s", docID, r.Error)
	}
	return nil
}

// signerKey finds the public key of the signer, from the store for hosted
// wallets and from the signer's DID document for others.
func (c *Credentials) signerKey(ctx context.Context, op string, w *ssi.Wallet, signer string, proof *ssi.Proof) (string, error) {
	if signer == "" {
		return "", core.SemanticErr(op, "", "signer of the document is missing")
	}
	if hosted, err := c.store.FindByBPNOrDID(ctx, signer); err == nil {
		return hosted.PublicKey, nil
	}
	r, err := c.agent.ResolveDIDDocument(ctx, signer, w.Token)
	if errors.Is(err, acapy.ErrNotFound) {
		return "", core.SemanticErr(op, signer, "DID document of the signer %s not found", signer)
	}
	if err != nil {
		return "", core.UpstreamErr(op, signer, err)
	}
	for _, vm := range r.DIDDocument.VerificationMethod {
		if vm.PublicKeyBase58 != "" && (proof.VerificationMethod == "" || vm.ID == proof.VerificationMethod) {
			return vm.PublicKeyBase58, nil
		}
	}
	return "", core.SemanticErr(op, signer, "no public key of %s for %s", signer, proof.VerificationMethod)
}

// sign signs the document with the wallet's key and decodes the signed
// document to out.
func (c *Credentials) sign(ctx context.Context, op string, w *ssi.Wallet, doc any, purpose string, out any) error {
	return signJSONLD(ctx, c.agent, op, w, doc, purpose, c.now(), out)
}

func signJSONLD(
	ctx context.Context,
	agent acapy.Client,
	op string,
	w *ssi.Wallet,
	doc any,
	purpose string,
	created time.Time,
	out any,
) error {
	signed, err := agent.SignJSONLD(ctx, acapy.SignRequest{
		Doc: acapy.SignDoc{
			Credential: doc,
			Options: acapy.SignOptions{
				ProofPurpose:       purpose,
				Type:               ssi.ProofEd25519Signature2018,
				VerificationMethod: ssi.KeyRef(w.DID),
				Created:            created.UTC().Format(time.RFC3339),
			},
		},
		Verkey: w.PublicKey,
	}, w.Token)
	if err != nil {
		return core.UpstreamErr(op, w.BPN, err)
	}
	if err = json.Unmarshal(signed, out); err != nil {
		return &core.Error{Kind: core.Upstream, Op: op, ID: w.BPN,
			Msg: "the agent returned an invalid signed document", Err: err}
	}
	return nil
}
