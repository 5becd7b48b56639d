// Package cfg opens the configured WalletStore. Stores are opened once per
// unique location and shared by every caller of Open.
package cfg

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/agent/storage/mgddb"
	"github.com/findy-network/findy-custodian/agent/storage/pgdb"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// WalletStorage wraps the store config with the helpers used to open it.
type WalletStorage struct {
	api.Config
}

type storageInfo struct {
	store api.WalletStore
	refs  int
}

var storages = struct {
	m map[string]*storageInfo
	sync.Mutex
}{
	m: make(map[string]*storageInfo),
}

// UniqueID identifies the underlying storage location.
func (c *WalletStorage) UniqueID() string {
	switch c.Type {
	case api.TypePostgres:
		return api.TypePostgres + ":" + c.DatabaseURL
	default:
		abs, err := filepath.Abs(c.FileName)
		if err != nil {
			return c.FileName
		}
		return api.TypeBolt + ":" + abs
	}
}

// Validate checks that the config names a usable store.
func (c *WalletStorage) Validate() error {
	switch c.Type {
	case "", api.TypeBolt:
		if c.FileName == "" {
			return fmt.Errorf("store file name is required for %s", api.TypeBolt)
		}
	case api.TypePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for %s", api.TypePostgres)
		}
	default:
		return fmt.Errorf("unknown store type: %s", c.Type)
	}
	return nil
}

// Open returns the store of the config, opening it on the first call.
func (c *WalletStorage) Open(ctx context.Context) (s api.WalletStore, err error) {
	defer err2.Handle(&err, "open wallet store from cfg")

	try.To(c.Validate())

	storages.Lock()
	defer storages.Unlock()

	id := c.UniqueID()
	if info, exist := storages.m[id]; exist {
		info.refs++
		glog.V(5).Infoln("open existing wallet store:", c.Type)
		return info.store, nil
	}

	switch c.Type {
	case api.TypePostgres:
		s = try.To1(pgdb.New(ctx, c.DatabaseURL))
	default:
		s = try.To1(mgddb.New(c.FileName, c.Key))
	}
	glog.V(1).Infoln("successful first time opening wallet store:", c.Type)

	storages.m[id] = &storageInfo{store: s, refs: 1}
	return s, nil
}

// Close releases one reference and closes the store with the last one.
func (c *WalletStorage) Close() (err error) {
	defer err2.Handle(&err, "close wallet store from cfg")

	storages.Lock()
	defer storages.Unlock()

	id := c.UniqueID()
	info, exist := storages.m[id]
	if !exist {
		glog.Warningf("Close called but wallet store (%s) not open!", c.Type)
		return nil
	}
	info.refs--
	if info.refs > 0 {
		return nil
	}
	try.To(info.store.Close())
	delete(storages.m, id)
	glog.V(5).Infoln("successful closing wallet store:", c.Type)
	return nil
}

// WantsBackup tells if the store is backed up by the service. PostgreSQL
// backups are the job of the database operator.
func (c *WalletStorage) WantsBackup() bool {
	return c.Type != api.TypePostgres
}
