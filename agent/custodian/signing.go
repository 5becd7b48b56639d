package custodian

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/findy-network/findy-custodian/core"
)

const opSignMessage = "sign message"

// SignedMessage is the result of Sign.
type SignedMessage struct {
	Identifier         string `json:"identifier"`
	Message            string `json:"message"`
	SignedMessageInHex string `json:"signedMessageInHex"`
	PublicKeyBase58    string `json:"publicKeyBase58"`
}

// Signer signs raw messages with the wallets' keys held by the agent.
type Signer struct {
	agent acapy.Client
	store api.WalletStore
}

func NewSigner(agent acapy.Client, store api.WalletStore) *Signer {
	return &Signer{agent: agent, store: store}
}

type signedMessageDoc struct {
	Proof *ssi.Proof `json:"proof"`
}

// Sign signs the message with the wallet's key. The signature is the
// signature part of the agent's detached JWS, 0x prefixed hex.
func (s *Signer) Sign(ctx context.Context, identifier, message string) (sm *SignedMessage, err error) {
	defer func(start time.Time) { observe(opSignMessage, start, err) }(time.Now())

	if message == "" {
		return nil, core.SyntaxErr(opSignMessage, "message is required")
	}
	w, err := findWallet(ctx, s.store, opSignMessage, identifier)
	if err != nil {
		return nil, err
	}

	var doc signedMessageDoc
	err = signJSONLD(ctx, s.agent, opSignMessage, w,
		map[string]string{"message": message},
		ssi.PurposeAssertionMethod, time.Now(), &doc)
	if err != nil {
		return nil, err
	}
	if doc.Proof == nil {
		return nil, &core.Error{Kind: core.Upstream, Op: opSignMessage, ID: identifier,
			Msg: "the agent returned the message without a proof"}
	}
	sig, err := jwsSignature(doc.Proof.JWS)
	if err != nil {
		return nil, &core.Error{Kind: core.Upstream, Op: opSignMessage, ID: identifier,
			Msg: "the agent returned an invalid signature", Err: err}
	}
	return &SignedMessage{
		Identifier:         identifier,
		Message:            message,
		SignedMessageInHex: "0x" + hex.EncodeToString(sig),
		PublicKeyBase58:    w.PublicKey,
	}, nil
}

// jwsSignature returns the decoded signature part of a compact or detached
// JWS.
func jwsSignature(jws string) ([]byte, error) {
	parts := strings.Split(jws, ".")
	if len(parts) != 3 || parts[2] == "" {
		return nil, core.SyntaxErr(opSignMessage, "JWS must have three parts")
	}
	return utils.DecodeB64(parts[2])
}
