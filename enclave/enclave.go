/*
Package enclave is a server-side Secure Enclave. It offers a sealed storage for
the sub-wallet keys the custodian generates when it creates a managed wallet in
the multi-tenant agent. Keys are indexed by the hash of the BPN and encrypted
with the master key given to InitSealedBox.
*/
package enclave

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	"github.com/findy-network/findy-common-go/crypto"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
)

const bpnBucket = "bpn_bucket"

const keyLength = 32

var (
	sealedBoxFilename string
	backupName        string
	cipher            *crypto.Cipher
)

// InitSealedBox initialize enclave's sealed box. This must be called once
// during the app life cycle. The hexKey is the master key of the enclave, empty
// only for tests.
func InitSealedBox(filename, backup, hexKey string) (err error) {
	defer err2.Handle(&err, "init enclave")

	glog.V(1).Infoln("init enclave", filename)
	sealedBoxFilename = filename
	backupName = backup
	cipher = nil
	if hexKey != "" {
		cipher = crypto.NewCipher(try.To1(hex.DecodeString(hexKey)))
	} else {
		glog.Warningln("enclave", filename, "is not encrypted")
	}
	return open(filename)
}

// WipeSealedBox closes and destroys the enclave permanently. This version only
// removes the sealed box file.
func WipeSealedBox() {
	if db != nil {
		Close()
	}

	err := os.RemoveAll(sealedBoxFilename)
	if err != nil {
		glog.Errorln("wipe enclave:", err)
	}
}

// NewWalletKey creates and stores a new sub-wallet key for the BPN. It
// returns ErrKeyExists if the BPN has a key already.
func NewWalletKey(bpn string) (key string, err error) {
	defer err2.Handle(&err, "new wallet key")

	key = try.To1(generateKey())
	try.To(addNewKeyValueToBucket(bpnBucket, encrypt(key), hash(bpn)))

	return key, nil
}

// WalletKeyNotExists returns true if a wallet key is not in the enclave
// associated by a BPN.
func WalletKeyNotExists(bpn string) bool {
	k, err := WalletKeyByBPN(bpn)
	return errors.Is(err, ErrNotExists) && k == ""
}

// WalletKeyByBPN retrieves a wallet key from sealed box by a BPN associated to
// it.
func WalletKeyByBPN(bpn string) (key string, err error) {
	defer err2.Handle(&err)

	return decrypt(try.To1(getKeyValueFromBucket(bpnBucket, hash(bpn)))), nil
}

// RemoveWalletKey removes the key of the BPN. Removing a missing key is not an
// error.
func RemoveWalletKey(bpn string) error {
	return rmKeyValueFromBucket(bpnBucket, hash(bpn))
}

func generateKey() (key string, err error) {
	defer err2.Handle(&err)

	b := make([]byte, keyLength)
	try.To1(rand.Read(b))
	return base58.Encode(b), nil
}

// hash makes the cryptographic hash of the map key value. This prevents us to
// store key value index (BPN) to the DB aka sealed box as plain text.
func hash(mapKeyValue string) []byte {
	if cipher == nil {
		return []byte(mapKeyValue)
	}
	h := sha256.Sum256([]byte(mapKeyValue))
	return h[:]
}

func encrypt(keyValue string) []byte {
	if cipher == nil {
		return []byte(keyValue)
	}
	return cipher.TryEncrypt([]byte(keyValue))
}

func decrypt(keyValue []byte) string {
	if cipher == nil {
		return string(keyValue)
	}
	return string(cipher.TryDecrypt(keyValue))
}
