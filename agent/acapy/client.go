/*
Package acapy is the client of the external identity agent. The agent is an
ACA-Py compatible multi-tenant admin API which holds the keys of the hosted
wallets, writes to the ledger, signs and verifies JSON-LD, and resolves DID
documents. Every Client method is a single blocking remote call.
*/
package acapy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/findy-network/findy-custodian/agent/ssi"
)

//go:generate mockgen -package acapy -source ./client.go -destination ./mock_client.go Client

// Client is the typed interface to the identity agent.
type Client interface {
	// NetworkIdentifier returns the ledger network identifier, empty if DIDs
	// aren't published to a ledger.
	NetworkIdentifier() string

	GetWallets(ctx context.Context) (*WalletList, error)
	CreateSubWallet(ctx context.Context, w CreateSubWallet) (*CreatedSubWallet, error)
	DeleteSubWallet(ctx context.Context, walletID, walletKey string) (bool, error)
	GetToken(ctx context.Context, walletID, walletKey string) (string, error)
	CreateLocalDID(ctx context.Context, d DidCreate, token string) (*DidResult, error)
	RegisterDIDOnLedger(ctx context.Context, r DidRegistration) (*DidRegistrationResult, error)
	AssignDIDToPublic(ctx context.Context, did, token string) (bool, error)
	SignJSONLD(ctx context.Context, r SignRequest, token string) (json.RawMessage, error)
	VerifyJSONLD(ctx context.Context, r VerifyRequest, token string) (*VerifyResponse, error)
	ResolveDIDDocument(ctx context.Context, did, token string) (*ResolutionResult, error)
	UpdateServiceEndpoint(ctx context.Context, e DidEndpointWithType, token string) (bool, error)
}

// ErrNotFound is returned, wrapped, when the agent answers 404.
var ErrNotFound = errors.New("not found at agent")

const (
	KeyManagementManaged = "managed"
	WalletTypeAskar      = "askar"
	DispatchDefault      = "default"

	DIDMethodSov   = "sov"
	KeyTypeEd25519 = "ed25519"

	RoleEndorser = "ENDORSER"
)

type WalletList struct {
	Results []WalletRecord `json:"results"`
}

type WalletRecord struct {
	WalletID      string         `json:"wallet_id"`
	KeyManagement string         `json:"key_management_mode,omitempty"`
	CreatedAt     time.Time      `json:"created_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
	Settings      map[string]any `json:"settings,omitempty"`
}

// Name returns the wallet name setting, which is the BPN of the wallet.
func (r WalletRecord) Name() string {
	n, _ := r.Settings["wallet.name"].(string)
	return n
}

type CreateSubWallet struct {
	KeyManagementMode  string `json:"key_management_mode"`
	Label              string `json:"label"`
	WalletDispatchType string `json:"wallet_dispatch_type"`
	WalletKey          string `json:"wallet_key"`
	WalletName         string `json:"wallet_name"`
	WalletType         string `json:"wallet_type"`
}

// NewCreateSubWallet returns the managed askar sub-wallet config.
func NewCreateSubWallet(name, label, key string) CreateSubWallet {
	return CreateSubWallet{
		KeyManagementMode:  KeyManagementManaged,
		Label:              label,
		WalletDispatchType: DispatchDefault,
		WalletKey:          key,
		WalletName:         name,
		WalletType:         WalletTypeAskar,
	}
}

type CreatedSubWallet struct {
	WalletID  string    `json:"wallet_id"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type walletKeyBody struct {
	WalletKey string `json:"wallet_key"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type DidCreate struct {
	Method  string           `json:"method"`
	Options DidCreateOptions `json:"options"`
}

type DidCreateOptions struct {
	KeyType string `json:"key_type"`
}

// NewDidCreate returns the default local DID request.
func NewDidCreate() DidCreate {
	return DidCreate{
		Method:  DIDMethodSov,
		Options: DidCreateOptions{KeyType: KeyTypeEd25519},
	}
}

type DidResult struct {
	Result DidInfo `json:"result"`
}

type DidInfo struct {
	DID     string `json:"did"`
	Verkey  string `json:"verkey"`
	Posture string `json:"posture,omitempty"`
	KeyType string `json:"key_type,omitempty"`
	Method  string `json:"method,omitempty"`
}

type DidRegistration struct {
	Alias  string `json:"alias"`
	DID    string `json:"did"`
	Verkey string `json:"verkey"`
	Role   string `json:"role"`
}

type DidRegistrationResult struct {
	DID    string `json:"did"`
	Seed   string `json:"seed,omitempty"`
	Verkey string `json:"verkey"`
}

type SignRequest struct {
	Doc    SignDoc `json:"doc"`
	Verkey string  `json:"verkey"`
}

type SignDoc struct {
	Credential any         `json:"credential"`
	Options    SignOptions `json:"options"`
}

type SignOptions struct {
	ProofPurpose       string `json:"proofPurpose"`
	Type               string `json:"type"`
	VerificationMethod string `json:"verificationMethod"`
	Created            string `json:"created,omitempty"`
}

type signResponse struct {
	SignedDoc json.RawMessage `json:"signed_doc"`
	Error     string          `json:"error,omitempty"`
}

type VerifyRequest struct {
	Doc    any    `json:"doc"`
	Verkey string `json:"verkey"`
}

type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type ResolutionResult struct {
	DIDDocument ssi.DIDDocument `json:"did_document"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

type DidEndpointWithType struct {
	DIDIdentifier string `json:"did"`
	Endpoint      string `json:"endpoint"`
	EndpointType  string `json:"endpoint_type"`
}
