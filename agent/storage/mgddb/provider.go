package mgddb

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/findy-network/findy-common-go/crypto"
	"github.com/findy-network/findy-common-go/crypto/db"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const level7 = 7

// provider owns the managed bolt DB and the cipher used for its buckets.
type provider struct {
	l sync.RWMutex

	filename string
	db       db.Handle
	cipher   *crypto.Cipher
}

func newProvider(filename, key string, bucketIDs ...byte) (p *provider, err error) {
	defer err2.Handle(&err, "wallet store open")

	if len(bucketIDs) == 0 {
		return nil, fmt.Errorf("no buckets specified")
	}
	p = &provider{filename: filename}
	if key != "" {
		p.cipher = crypto.NewCipher(try.To1(hex.DecodeString(key)))
	} else {
		glog.Warningln("wallet store", filename, "is not encrypted")
	}

	buckets := make([][]byte, 0, len(bucketIDs))
	for _, id := range bucketIDs {
		buckets = append(buckets, []byte{id})
	}

	// this will not open the file handle to db, just initializes it
	p.db = db.New(db.Cfg{
		Filename:   filename,
		Buckets:    buckets,
		BackupName: filename + "_backup",
	})
	return p, nil
}

func (p *provider) close() (err error) {
	defer err2.Handle(&err, "wallet store close")

	p.l.Lock()
	defer p.l.Unlock()

	if p.db == nil {
		glog.Warningf("skipping wallet store close for %s, already closed", p.filename)
		return nil
	}
	try.To(p.db.Close())
	p.db = nil
	return nil
}

func (p *provider) backup() (err error) {
	defer err2.Handle(&err, "wallet store backup")

	p.l.Lock()
	defer p.l.Unlock()

	did := try.To1(p.db.Backup())
	glog.V(1).Infoln("wallet store backup done:", did)
	return nil
}

func (p *provider) addData(bucketID byte, key, value []byte) (err error) {
	p.l.RLock()
	defer p.l.RUnlock()

	glog.V(level7).Infoln("wallet store add", bucketID)
	return p.db.AddKeyValueToBucket([]byte{bucketID},
		&db.Data{
			Data: value,
			Read: p.encrypt,
		},
		&db.Data{
			Data: key,
			Read: p.hash,
		},
	)
}

// getData executes a read transaction by a key and a bucket. Found is false
// and err nil when the key doesn't exist.
func (p *provider) getData(bucketID byte, key []byte) (value []byte, found bool, err error) {
	p.l.RLock()
	defer p.l.RUnlock()

	data := &db.Data{
		Write: p.decrypt,
		Use: func(d []byte) interface{} {
			value = d
			return nil
		},
	}
	found, err = p.db.GetKeyValueFromBucket([]byte{bucketID},
		&db.Data{
			Data: key,
			Read: p.hash,
		},
		data)
	return value, found && len(value) > 0, err
}

func (p *provider) deleteData(bucketID byte, key []byte) (err error) {
	p.l.RLock()
	defer p.l.RUnlock()

	return p.db.RmKeyValueFromBucket([]byte{bucketID}, &db.Data{
		Data: key,
		Read: p.hash,
	})
}

func (p *provider) getAll(bucketID byte) (res [][]byte, err error) {
	p.l.RLock()
	defer p.l.RUnlock()

	return p.db.GetAllValuesFromBucket([]byte{bucketID}, p.decrypt, copyBytes)
}

// hash makes the cryptographic hash of the map key value. This prevents us to
// store key value index (BPN, DID) to the DB as plain text.
func (p *provider) hash(key []byte) (k []byte) {
	if p.cipher != nil {
		h := md5.Sum(key)
		return h[:]
	}
	return copyBytes(key)
}

func (p *provider) encrypt(value []byte) (k []byte) {
	if p.cipher != nil {
		return p.cipher.TryEncrypt(value)
	}
	return copyBytes(value)
}

func (p *provider) decrypt(value []byte) (k []byte) {
	if p.cipher != nil {
		return p.cipher.TryDecrypt(value)
	}
	return copyBytes(value)
}

func copyBytes(value []byte) []byte {
	return append(value[:0:0], value...)
}
