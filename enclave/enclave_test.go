package enclave

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dbFilename = "enclave.bolt"
const backupFilename = "enclave_backup.bolt"

const bpn = "BPNL000000000001"
const bpnNotCreated = "BPNL00000000NONE"

// key must be set from production environment, SHA-256, 32 bytes
const hexKey = "15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c"

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	_ = os.RemoveAll(dbFilename)
	_ = InitSealedBox(dbFilename, backupFilename, hexKey)
}

func tearDown() {
	WipeSealedBox()
	_ = os.RemoveAll(backupFilename)
}

func TestNewWalletKey(t *testing.T) {
	k, err := NewWalletKey(bpn)
	assert.NoError(t, err)
	assert.NotEmpty(t, k)

	k2, err := WalletKeyByBPN(bpn)
	assert.NoError(t, err)
	assert.Equal(t, k, k2)

	_, err = NewWalletKey(bpn)
	assert.ErrorIs(t, err, ErrKeyExists)
}

func TestWalletKeyByBPN(t *testing.T) {
	_, err := NewWalletKey("BPNL000000000002")
	require.NoError(t, err)

	key, err := WalletKeyByBPN("BPNL000000000002")
	assert.NoError(t, err)
	assert.NotEmpty(t, key)

	key, err = WalletKeyByBPN(bpnNotCreated)
	assert.ErrorIs(t, err, ErrNotExists)
	assert.Empty(t, key)
}

func TestWalletKeyExists(t *testing.T) {
	_, err := NewWalletKey("BPNL000000000003")
	require.NoError(t, err)

	assert.True(t, WalletKeyNotExists(bpnNotCreated), "wallet not created")
	assert.False(t, WalletKeyNotExists("BPNL000000000003"), "wallet already created")
}

func TestRemoveWalletKey(t *testing.T) {
	const bpnRm = "BPNL000000000004"

	k, err := NewWalletKey(bpnRm)
	require.NoError(t, err)

	assert.NoError(t, RemoveWalletKey(bpnRm))
	assert.True(t, WalletKeyNotExists(bpnRm))
	assert.NoError(t, RemoveWalletKey(bpnRm))

	k2, err := NewWalletKey(bpnRm)
	assert.NoError(t, err)
	assert.NotEqual(t, k, k2)
}

func TestBackup(t *testing.T) {
	require.NoError(t, Backup())

	info, err := os.Stat(backupFilename)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
