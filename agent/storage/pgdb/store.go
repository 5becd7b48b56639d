/*
Package pgdb implements the WalletStore on PostgreSQL. BPN uniqueness is the
primary key constraint of the wallets table, so concurrent creates of the same
BPN are detected by the database and returned as api.ErrConflict.
*/
package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/findy-network/findy-common-go/dto"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/golang/glog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
	bpn        TEXT PRIMARY KEY,
	did        TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	public_key TEXT NOT NULL DEFAULT '',
	wallet_id  TEXT NOT NULL DEFAULT '',
	token      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS credentials (
	id         BIGSERIAL PRIMARY KEY,
	wallet_bpn TEXT NOT NULL REFERENCES wallets(bpn) ON DELETE CASCADE,
	data       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS credentials_wallet_bpn_idx ON credentials(wallet_bpn);
`

const walletColumns = `bpn, did, name, created_at, public_key, wallet_id, token`

// matchIdentifier selects the wallet by BPN first and DID second.
const matchIdentifier = `WHERE bpn = $1 OR did = $1 ORDER BY (bpn = $1) DESC LIMIT 1`

// Store is the PostgreSQL WalletStore.
type Store struct {
	pool *pgxpool.Pool
}

var _ api.WalletStore = (*Store)(nil)

// New connects to the database and ensures the schema.
func New(ctx context.Context, databaseURL string) (s *Store, err error) {
	defer err2.Handle(&err, "postgres wallet store")

	cfg := try.To1(pgxpool.ParseConfig(databaseURL))
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool := try.To1(pgxpool.NewWithConfig(ctx, cfg))
	defer err2.Handle(&err, func(err error) error {
		pool.Close()
		return err
	})

	try.To(pool.Ping(ctx))
	try.To1(pool.Exec(ctx, schema))
	glog.V(1).Infoln("postgres wallet store ready")
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanWallet(row pgx.Row) (w *ssi.Wallet, err error) {
	w = new(ssi.Wallet)
	err = row.Scan(&w.BPN, &w.DID, &w.Name, &w.CreatedAt,
		&w.PublicKey, &w.WalletID, &w.Token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, api.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	w.CreatedAt = w.CreatedAt.UTC()
	return w, nil
}

func (s *Store) FindByBPNOrDID(ctx context.Context, identifier string) (w *ssi.Wallet, err error) {
	defer err2.Handle(&err, "find wallet")

	w = try.To1(scanWallet(s.pool.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets `+matchIdentifier, identifier)))
	w.Credentials = try.To1(s.credentials(ctx, w.BPN))
	return w, nil
}

func (s *Store) credentials(ctx context.Context, bpn string) (vcs []ssi.VerifiableCredential, err error) {
	defer err2.Handle(&err, "credentials")

	rows := try.To1(s.pool.Query(ctx,
		`SELECT data FROM credentials WHERE wallet_bpn = $1 ORDER BY id`, bpn))
	defer rows.Close()

	for rows.Next() {
		var data []byte
		try.To(rows.Scan(&data))
		var vc ssi.VerifiableCredential
		dto.FromJSON(data, &vc)
		vcs = append(vcs, vc)
	}
	try.To(rows.Err())
	return vcs, nil
}

func (s *Store) Insert(ctx context.Context, w *ssi.Wallet) (err error) {
	defer err2.Handle(&err, "insert wallet")

	_, err = s.pool.Exec(ctx,
		`INSERT INTO wallets (`+walletColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.BPN, w.DID, w.Name, w.CreatedAt, w.PublicKey, w.WalletID, w.Token)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return api.ErrConflict
	}
	try.To(err)
	glog.V(2).Infoln("wallet stored:", w.BPN)
	return nil
}

func (s *Store) Delete(ctx context.Context, identifier string) (ok bool, err error) {
	defer err2.Handle(&err, "delete wallet")

	tag := try.To1(s.pool.Exec(ctx,
		`DELETE FROM wallets WHERE bpn = (SELECT bpn FROM wallets `+matchIdentifier+`)`,
		identifier))
	if tag.RowsAffected() == 0 {
		return false, api.ErrNotFound
	}
	glog.V(2).Infoln("wallet removed:", identifier)
	return true, nil
}

func (s *Store) ListAll(ctx context.Context, withCredentials bool) (l []ssi.Wallet, err error) {
	defer err2.Handle(&err, "list wallets")

	rows := try.To1(s.pool.Query(ctx,
		`SELECT `+walletColumns+` FROM wallets ORDER BY created_at, bpn`))
	defer rows.Close()

	l = make([]ssi.Wallet, 0)
	for rows.Next() {
		w := try.To1(scanWallet(rows))
		l = append(l, *w)
	}
	try.To(rows.Err())

	if withCredentials {
		for i := range l {
			l[i].Credentials = try.To1(s.credentials(ctx, l[i].BPN))
		}
	}
	return l, nil
}

func (s *Store) AppendCredential(
	ctx context.Context,
	identifier string,
	vc ssi.VerifiableCredential,
) (
	err error,
) {
	defer err2.Handle(&err, "append credential")

	tag := try.To1(s.pool.Exec(ctx,
		`INSERT INTO credentials (wallet_bpn, data)
		 SELECT bpn, $2::jsonb FROM wallets `+matchIdentifier,
		identifier, dto.ToJSONBytes(vc)))
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}
