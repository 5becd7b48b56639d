/*
Package acapytest offers an in-memory identity agent for the tests of the
custodian layers. It follows the agent's multi-tenant semantics: one
endpoint per endpoint type in a DID document, and service ids derived from the
type.
*/
package acapytest

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
)

// ErrInjected is the default error of the injected failures.
var ErrInjected = errors.New("injected agent failure")

type subWallet struct {
	id    string
	name  string
	key   string
	token string
	dids  []string
}

type didEntry struct {
	verkey   string
	token    string
	public   bool
	services []ssi.ServiceEntry
}

// Agent is the fake. The zero value isn't usable, use New.
type Agent struct {
	sync.Mutex

	network string
	wallets map[string]*subWallet // by wallet id
	tokens  map[string]string     // token -> wallet id
	dids    map[string]*didEntry  // by unqualified DID
	ledger  map[string]string     // registered DID -> verkey

	fail  map[string]error
	calls map[string]int
}

var _ acapy.Client = (*Agent)(nil)

// New returns a fake agent. An empty network means DIDs aren't published.
func New(network string) *Agent {
	return &Agent{
		network: network,
		wallets: make(map[string]*subWallet),
		tokens:  make(map[string]string),
		dids:    make(map[string]*didEntry),
		ledger:  make(map[string]string),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// Fail makes the named operation fail with err until Fail(op, nil).
func (a *Agent) Fail(op string, err error) {
	a.Lock()
	defer a.Unlock()
	if err == nil {
		delete(a.fail, op)
		return
	}
	a.fail[op] = err
}

// Calls returns how many times the operation was called.
func (a *Agent) Calls(op string) int {
	a.Lock()
	defer a.Unlock()
	return a.calls[op]
}

// CallsTotal returns the number of all calls.
func (a *Agent) CallsTotal() (n int) {
	a.Lock()
	defer a.Unlock()
	for _, c := range a.calls {
		n += c
	}
	return n
}

// WalletCount returns the number of live sub-wallets.
func (a *Agent) WalletCount() int {
	a.Lock()
	defer a.Unlock()
	return len(a.wallets)
}

// Published tells if the DID is on the fake ledger.
func (a *Agent) Published(did string) bool {
	a.Lock()
	defer a.Unlock()
	_, ok := a.ledger[did]
	return ok
}

func (a *Agent) enter(op string) error {
	a.calls[op]++
	return a.fail[op]
}

func (a *Agent) walletByToken(token string) (*subWallet, error) {
	id, ok := a.tokens[token]
	if !ok {
		return nil, &acapy.StatusError{Code: 401, Status: "401 Unauthorized"}
	}
	return a.wallets[id], nil
}

func (a *Agent) NetworkIdentifier() string {
	return a.network
}

func (a *Agent) GetWallets(_ context.Context) (*acapy.WalletList, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("GetWallets"); err != nil {
		return nil, err
	}
	l := &acapy.WalletList{}
	for _, w := range a.wallets {
		l.Results = append(l.Results, acapy.WalletRecord{
			WalletID: w.id,
			Settings: map[string]any{"wallet.name": w.name},
		})
	}
	return l, nil
}

func (a *Agent) CreateSubWallet(_ context.Context, w acapy.CreateSubWallet) (*acapy.CreatedSubWallet, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("CreateSubWallet"); err != nil {
		return nil, err
	}
	for _, sw := range a.wallets {
		if sw.name == w.WalletName {
			return nil, &acapy.StatusError{Code: 400, Status: "400 Bad Request",
				Body: "wallet name already exists"}
		}
	}
	id := randomID(16)
	sw := &subWallet{id: id, name: w.WalletName, key: w.WalletKey, token: randomID(24)}
	a.wallets[id] = sw
	a.tokens[sw.token] = id
	return &acapy.CreatedSubWallet{WalletID: id, Token: sw.token, CreatedAt: time.Now()}, nil
}

func (a *Agent) DeleteSubWallet(_ context.Context, walletID, walletKey string) (bool, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("DeleteSubWallet"); err != nil {
		return false, err
	}
	sw, ok := a.wallets[walletID]
	if !ok {
		return false, fmt.Errorf("wallet %s: %w", walletID,
			&acapy.StatusError{Code: 404, Status: "404 Not Found"})
	}
	if sw.key != walletKey {
		return false, &acapy.StatusError{Code: 401, Status: "401 Unauthorized"}
	}
	for _, d := range sw.dids {
		delete(a.dids, d)
	}
	delete(a.tokens, sw.token)
	delete(a.wallets, walletID)
	return true, nil
}

func (a *Agent) GetToken(_ context.Context, walletID, walletKey string) (string, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("GetToken"); err != nil {
		return "", err
	}
	sw, ok := a.wallets[walletID]
	if !ok || sw.key != walletKey {
		return "", &acapy.StatusError{Code: 401, Status: "401 Unauthorized"}
	}
	return sw.token, nil
}

func (a *Agent) CreateLocalDID(_ context.Context, _ acapy.DidCreate, token string) (*acapy.DidResult, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("CreateLocalDID"); err != nil {
		return nil, err
	}
	sw, err := a.walletByToken(token)
	if err != nil {
		return nil, err
	}
	did := randomID(16)
	verkey := randomID(32)
	a.dids[did] = &didEntry{verkey: verkey, token: token}
	sw.dids = append(sw.dids, did)
	return &acapy.DidResult{Result: acapy.DidInfo{
		DID: did, Verkey: verkey, Posture: "wallet_only",
		KeyType: acapy.KeyTypeEd25519, Method: acapy.DIDMethodSov,
	}}, nil
}

func (a *Agent) RegisterDIDOnLedger(_ context.Context, r acapy.DidRegistration) (*acapy.DidRegistrationResult, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("RegisterDIDOnLedger"); err != nil {
		return nil, err
	}
	a.ledger[r.DID] = r.Verkey
	return &acapy.DidRegistrationResult{DID: r.DID, Verkey: r.Verkey}, nil
}

func (a *Agent) AssignDIDToPublic(_ context.Context, did, token string) (bool, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("AssignDIDToPublic"); err != nil {
		return false, err
	}
	d, ok := a.dids[did]
	if !ok || d.token != token {
		return false, &acapy.StatusError{Code: 404, Status: "404 Not Found"}
	}
	if _, onLedger := a.ledger[did]; !onLedger {
		return false, &acapy.StatusError{Code: 400, Status: "400 Bad Request",
			Body: "DID not on ledger"}
	}
	d.public = true
	return true, nil
}

func (a *Agent) SignJSONLD(_ context.Context, r acapy.SignRequest, token string) (_ json.RawMessage, err error) {
	a.Lock()
	defer a.Unlock()
	defer err2.Handle(&err)

	try.To(a.enter("SignJSONLD"))
	try.To1(a.walletByToken(token))

	doc := make(map[string]any)
	try.To(json.Unmarshal(try.To1(json.Marshal(r.Doc.Credential)), &doc))
	payload := try.To1(json.Marshal(doc)) // canonical key order

	created := r.Doc.Options.Created
	if created == "" {
		created = time.Now().UTC().Format(time.RFC3339)
	}
	doc["proof"] = map[string]any{
		"type":               r.Doc.Options.Type,
		"created":            created,
		"proofPurpose":       r.Doc.Options.ProofPurpose,
		"verificationMethod": r.Doc.Options.VerificationMethod,
		"jws":                DetachedJWS(payload, r.Verkey),
	}
	return json.Marshal(doc)
}

func (a *Agent) VerifyJSONLD(_ context.Context, r acapy.VerifyRequest, token string) (_ *acapy.VerifyResponse, err error) {
	a.Lock()
	defer a.Unlock()
	defer err2.Handle(&err)

	try.To(a.enter("VerifyJSONLD"))
	try.To1(a.walletByToken(token))

	data := try.To1(json.Marshal(r.Doc))
	var doc map[string]any
	try.To(json.Unmarshal(data, &doc))
	proof, ok := doc["proof"].(map[string]any)
	if !ok {
		return &acapy.VerifyResponse{Valid: false, Error: "no proof"}, nil
	}
	delete(doc, "proof")
	jws, _ := proof["jws"].(string)
	payload := try.To1(json.Marshal(doc))
	for _, d := range a.dids {
		if DetachedJWS(payload, d.verkey) == jws {
			return &acapy.VerifyResponse{Valid: true}, nil
		}
	}
	return &acapy.VerifyResponse{Valid: false, Error: "signature mismatch"}, nil
}

func (a *Agent) ResolveDIDDocument(_ context.Context, did, token string) (_ *acapy.ResolutionResult, err error) {
	a.Lock()
	defer a.Unlock()
	defer err2.Handle(&err)

	try.To(a.enter("ResolveDIDDocument"))
	try.To1(a.walletByToken(token))

	unq := try.To1(ssi.UnqualifiedDID(did))
	d, ok := a.dids[unq]
	if !ok {
		return nil, fmt.Errorf("%s: %w", did, acapy.ErrNotFound)
	}
	doc := ssi.DIDDocument{
		Context: []string{ssi.DIDContext},
		ID:      did,
		VerificationMethod: []ssi.VerificationMethod{{
			ID:              ssi.KeyRef(did),
			Type:            "Ed25519VerificationKey2018",
			Controller:      did,
			PublicKeyBase58: d.verkey,
		}},
		Authentication: []any{ssi.KeyRef(did)},
	}
	for _, s := range d.services {
		s.ID = did + "#" + s.ID
		doc.Service = append(doc.Service, s)
	}
	return &acapy.ResolutionResult{DIDDocument: doc}, nil
}

func (a *Agent) UpdateServiceEndpoint(_ context.Context, e acapy.DidEndpointWithType, token string) (bool, error) {
	a.Lock()
	defer a.Unlock()
	if err := a.enter("UpdateServiceEndpoint"); err != nil {
		return false, err
	}
	if _, err := a.walletByToken(token); err != nil {
		return false, err
	}
	d, ok := a.dids[e.DIDIdentifier]
	if !ok {
		return false, &acapy.StatusError{Code: 404, Status: "404 Not Found"}
	}
	t := ssi.ServiceTypeFromAgent(e.EndpointType)
	if !t.Known() {
		return false, &acapy.StatusError{Code: 400, Status: "400 Bad Request",
			Body: "unknown endpoint type"}
	}
	entry := ssi.ServiceEntry{ID: t.String(), Type: t.String(), ServiceEndpoint: e.Endpoint}
	for i := range d.services {
		if d.services[i].Type == entry.Type {
			d.services[i] = entry
			return true, nil
		}
	}
	d.services = append(d.services, entry)
	return true, nil
}

// DetachedJWS returns a deterministic detached JWS over the payload for the
// key. The signature part is the SHA-256 of the key and the payload.
func DetachedJWS(payload []byte, verkey string) string {
	header := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"alg":"EdDSA","b64":false,"crit":["b64"]}`))
	h := sha256.New()
	h.Write([]byte(verkey))
	h.Write(payload)
	return header + ".." + base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func randomID(n int) string {
	b := make([]byte, n)
	try.To1(rand.Read(b))
	return base58.Encode(b)
}
