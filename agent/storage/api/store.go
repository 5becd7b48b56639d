// Package api defines the persistence contract of the wallet records.
package api

import (
	"context"
	"errors"

	"github.com/findy-network/findy-custodian/agent/ssi"
)

var (
	// ErrNotFound is returned when no wallet matches the identifier.
	ErrNotFound = errors.New("wallet not found")
	// ErrConflict is the duplicate-key violation of Insert.
	ErrConflict = errors.New("wallet already exists")
)

// WalletStore persists wallet records and their stored credentials. Every
// method is transactional for the single record it touches. Identifiers are
// matched against the BPN first and then the DID.
type WalletStore interface {
	FindByBPNOrDID(ctx context.Context, identifier string) (*ssi.Wallet, error)
	Insert(ctx context.Context, w *ssi.Wallet) error
	Delete(ctx context.Context, identifier string) (bool, error)
	ListAll(ctx context.Context, withCredentials bool) ([]ssi.Wallet, error)
	AppendCredential(ctx context.Context, identifier string, vc ssi.VerifiableCredential) error
	Close() error
}

// Backupper is implemented by stores that can copy themselves aside.
type Backupper interface {
	Backup() error
}

// Config selects and configures the WalletStore implementation.
type Config struct {
	Type        string // bolt or postgres
	FileName    string // bolt file
	Key         string // hex cipher key of the bolt file, empty for plain
	DatabaseURL string // postgres connection string
}

const (
	TypeBolt     = "bolt"
	TypePostgres = "postgres"
)
