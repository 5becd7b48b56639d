package enclave

import (
	"errors"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	bolt "go.etcd.io/bbolt"
)

var db *bolt.DB

// ErrNotExists is an error for key not exist in the enclave.
var ErrNotExists = errors.New("key not exists")

// ErrKeyExists is an error for adding a key that is already in the enclave.
var ErrKeyExists = errors.New("key already exists")

// ErrSealBoxAlreadyExists is an error for enclave sealed box already exists.
var ErrSealBoxAlreadyExists = errors.New("enclave sealed box exists")

func assertDB() {
	if db == nil {
		panic("don't forget init the seal box")
	}
}

func open(filename string) (err error) {
	if db != nil {
		return ErrSealBoxAlreadyExists
	}
	defer err2.Handle(&err)

	db = try.To1(bolt.Open(filename, 0600, nil))

	try.To(db.Update(func(tx *bolt.Tx) (err error) {
		defer err2.Handle(&err, "create buckets")

		try.To1(tx.CreateBucketIfNotExists([]byte(bpnBucket)))
		return nil
	}))
	return nil
}

// Close closes the sealed box of the enclave. It can be open again with
// InitSealedBox.
func Close() {
	defer err2.Catch(err2.Err(func(err error) {
		glog.Errorln("enclave close:", err)
	}))
	if db == nil {
		return
	}

	try.To(db.Close())
	db = nil
}

// Backup copies the sealed box to the backup file inside a read transaction.
func Backup() (err error) {
	assertDB()
	defer err2.Handle(&err, "enclave backup")

	if backupName == "" {
		glog.V(3).Infoln("enclave backup name not set, skipping")
		return nil
	}
	try.To(db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(backupName, 0600)
	}))
	glog.V(1).Infoln("enclave backup done:", backupName)
	return nil
}

// addNewKeyValueToBucket adds the key only if the index is free. The check and
// the write are in the same transaction.
func addNewKeyValueToBucket(bucket string, keyValue, index []byte) (err error) {
	assertDB()

	defer err2.Handle(&err, "add new key")

	try.To(db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b.Get(index) != nil {
			return ErrKeyExists
		}
		return b.Put(index, keyValue)
	}))
	return nil
}

func getKeyValueFromBucket(bucket string, index []byte) (keyValue []byte, err error) {
	assertDB()

	defer err2.Handle(&err)

	try.To(db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		d := b.Get(index)
		if d == nil {
			return ErrNotExists
		}
		keyValue = append(d[:0:0], d...)
		return nil
	}))
	return keyValue, nil
}

func rmKeyValueFromBucket(bucket string, index []byte) (err error) {
	assertDB()

	defer err2.Handle(&err, "remove key")

	try.To(db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete(index)
	}))
	return nil
}
