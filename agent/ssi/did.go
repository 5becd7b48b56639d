package ssi

import (
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/pkg/doc/did"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
)

const (
	MethodSov  = "sov"
	MethodIndy = "indy"

	// verKeyLen is the length of an Ed25519 public key.
	verKeyLen = 32
)

// IsDID tells if the identifier is a syntactically valid DID URI. Wallet
// identifiers are either DIDs or BPNs.
func IsDID(identifier string) bool {
	if !strings.HasPrefix(identifier, "did:") {
		return false
	}
	_, err := did.Parse(identifier)
	return err == nil
}

// QualifiedDID builds the fully qualified DID of the unqualified indy DID
// returned by the agent. The network is empty when the agent's ledger has no
// network identifier, and then the sov method is used.
func QualifiedDID(network, unqualified string) string {
	if strings.HasPrefix(unqualified, "did:") {
		return unqualified
	}
	if network == "" {
		return fmt.Sprintf("did:%s:%s", MethodSov, unqualified)
	}
	return fmt.Sprintf("did:%s:%s:%s", MethodIndy, network, unqualified)
}

// UnqualifiedDID returns the method specific part of the last segment, the
// form the agent uses for its local DIDs.
func UnqualifiedDID(qualified string) (s string, err error) {
	defer err2.Handle(&err, "unqualified DID")

	if !strings.HasPrefix(qualified, "did:") {
		return qualified, nil
	}
	d := try.To1(did.Parse(qualified))
	parts := strings.Split(d.MethodSpecificID, ":")
	return parts[len(parts)-1], nil
}

// KeyRef returns the default key reference of the DID, the verification
// method of its proofs.
func KeyRef(DID string) string {
	return DID + "#key-1"
}

// ValidVerKey tells if k is a base58 encoded Ed25519 public key.
func ValidVerKey(k string) bool {
	b, err := base58.Decode(k)
	return err == nil && len(b) == verKeyLen
}
