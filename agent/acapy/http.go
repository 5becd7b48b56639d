package acapy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/findy-network/findy-custodian/agent/acapy"

// Config is the connection configuration of the agent.
type Config struct {
	AdminURL          string
	APIKey            string
	LedgerURL         string
	NetworkIdentifier string
	Timeout           time.Duration
}

// HTTPClient implements Client over the agent's admin REST API.
type HTTPClient struct {
	cfg    Config
	client *http.Client
	tracer trace.Tracer
}

// New returns the HTTP implementation of the Client.
func New(cfg Config) (c *HTTPClient, err error) {
	defer err2.Handle(&err, "new agent client")

	if cfg.AdminURL == "" {
		return nil, errors.New("agent admin url cannot be empty")
	}
	try.To1(url.Parse(cfg.AdminURL))
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	cfg.AdminURL = strings.TrimSuffix(cfg.AdminURL, "/")
	cfg.LedgerURL = strings.TrimSuffix(cfg.LedgerURL, "/")
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		tracer: otel.Tracer(tracerName),
	}, nil
}

func (c *HTTPClient) NetworkIdentifier() string {
	return c.cfg.NetworkIdentifier
}

func (c *HTTPClient) call(ctx context.Context, op string, r request) (err error) {
	ctx, span := c.tracer.Start(ctx, "acapy."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", r.method),
			attribute.String("acapy.op", op),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	glog.V(3).Infoln("agent call:", op)
	return SendAndWaitReq(ctx, c.client, c.cfg.APIKey, r)
}

func (c *HTTPClient) adminURL(format string, a ...any) string {
	return c.cfg.AdminURL + fmt.Sprintf(format, a...)
}

func (c *HTTPClient) GetWallets(ctx context.Context) (l *WalletList, err error) {
	defer err2.Handle(&err, "get wallets")

	l = new(WalletList)
	try.To(c.call(ctx, "get_wallets", request{
		method: http.MethodGet,
		url:    c.adminURL("/multitenancy/wallets"),
		out:    l,
	}))
	return l, nil
}

func (c *HTTPClient) CreateSubWallet(
	ctx context.Context,
	w CreateSubWallet,
) (
	r *CreatedSubWallet,
	err error,
) {
	defer err2.Handle(&err, "create sub-wallet")

	r = new(CreatedSubWallet)
	try.To(c.call(ctx, "create_sub_wallet", request{
		method: http.MethodPost,
		url:    c.adminURL("/multitenancy/wallet"),
		in:     w,
		out:    r,
	}))
	if r.WalletID == "" {
		return nil, errors.New("agent returned no wallet id")
	}
	return r, nil
}

func (c *HTTPClient) DeleteSubWallet(ctx context.Context, walletID, walletKey string) (ok bool, err error) {
	defer err2.Handle(&err, "delete sub-wallet")

	try.To(c.call(ctx, "delete_sub_wallet", request{
		method: http.MethodPost,
		url:    c.adminURL("/multitenancy/wallet/%s/remove", url.PathEscape(walletID)),
		in:     walletKeyBody{WalletKey: walletKey},
	}))
	return true, nil
}

func (c *HTTPClient) GetToken(ctx context.Context, walletID, walletKey string) (t string, err error) {
	defer err2.Handle(&err, "get token")

	var r tokenResponse
	try.To(c.call(ctx, "get_token", request{
		method: http.MethodPost,
		url:    c.adminURL("/multitenancy/wallet/%s/token", url.PathEscape(walletID)),
		in:     walletKeyBody{WalletKey: walletKey},
		out:    &r,
	}))
	if r.Token == "" {
		return "", errors.New("agent returned empty token")
	}
	return r.Token, nil
}

func (c *HTTPClient) CreateLocalDID(ctx context.Context, d DidCreate, token string) (r *DidResult, err error) {
	defer err2.Handle(&err, "create local DID")

	r = new(DidResult)
	try.To(c.call(ctx, "create_local_did", request{
		method: http.MethodPost,
		url:    c.adminURL("/wallet/did/create"),
		token:  token,
		in:     d,
		out:    r,
	}))
	if r.Result.DID == "" || r.Result.Verkey == "" {
		return nil, errors.New("agent returned incomplete DID")
	}
	return r, nil
}

func (c *HTTPClient) RegisterDIDOnLedger(
	ctx context.Context,
	reg DidRegistration,
) (
	r *DidRegistrationResult,
	err error,
) {
	defer err2.Handle(&err, "register DID on ledger")

	if c.cfg.LedgerURL == "" {
		return nil, errors.New("ledger url not configured")
	}
	r = new(DidRegistrationResult)
	try.To(c.call(ctx, "register_did", request{
		method: http.MethodPost,
		url:    c.cfg.LedgerURL + "/register",
		in:     reg,
		out:    r,
	}))
	return r, nil
}

func (c *HTTPClient) AssignDIDToPublic(ctx context.Context, did, token string) (ok bool, err error) {
	defer err2.Handle(&err, "assign DID to public")

	try.To(c.call(ctx, "assign_did_public", request{
		method: http.MethodPost,
		url:    c.adminURL("/wallet/did/public?did=%s", url.QueryEscape(did)),
		token:  token,
	}))
	return true, nil
}

func (c *HTTPClient) SignJSONLD(ctx context.Context, sr SignRequest, token string) (d json.RawMessage, err error) {
	defer err2.Handle(&err, "sign json-ld")

	var r signResponse
	try.To(c.call(ctx, "sign_jsonld", request{
		method: http.MethodPost,
		url:    c.adminURL("/jsonld/sign"),
		token:  token,
		in:     sr,
		out:    &r,
	}))
	if r.Error != "" {
		return nil, errors.New(r.Error)
	}
	if len(r.SignedDoc) == 0 {
		return nil, errors.New("agent returned no signed document")
	}
	return r.SignedDoc, nil
}

func (c *HTTPClient) VerifyJSONLD(ctx context.Context, vr VerifyRequest, token string) (r *VerifyResponse, err error) {
	defer err2.Handle(&err, "verify json-ld")

	r = new(VerifyResponse)
	try.To(c.call(ctx, "verify_jsonld", request{
		method: http.MethodPost,
		url:    c.adminURL("/jsonld/verify"),
		token:  token,
		in:     vr,
		out:    r,
	}))
	return r, nil
}

func (c *HTTPClient) ResolveDIDDocument(ctx context.Context, did, token string) (r *ResolutionResult, err error) {
	defer err2.Handle(&err, "resolve DID document")

	r = new(ResolutionResult)
	try.To(c.call(ctx, "resolve_did", request{
		method: http.MethodGet,
		url:    c.adminURL("/resolver/resolve/%s", url.PathEscape(did)),
		token:  token,
		out:    r,
	}))
	if r.DIDDocument.ID == "" {
		return nil, fmt.Errorf("%s: %w", did, ErrNotFound)
	}
	return r, nil
}

func (c *HTTPClient) UpdateServiceEndpoint(
	ctx context.Context,
	e DidEndpointWithType,
	token string,
) (
	ok bool,
	err error,
) {
	defer err2.Handle(&err, "update service endpoint")

	try.To(c.call(ctx, "set_did_endpoint", request{
		method: http.MethodPost,
		url:    c.adminURL("/wallet/set-did-endpoint"),
		token:  token,
		in:     e,
	}))
	return true, nil
}
