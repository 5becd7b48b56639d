package utils

import (
	"testing"
	"time"

	"github.com/lainio/err2/assert"
)

func TestHub_WalletReadOnly(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	h := &Hub{}
	assert.ThatNot(h.WalletReadOnly("BPNL000000000001"))
	assert.ThatNot(h.WalletReadOnly(""))

	h.SetRootBPN("BPNL000000000001")
	h.SetReadOnlyBPNs([]string{"", "BPNL000000000002"})
	assert.That(h.WalletReadOnly("BPNL000000000001"))
	assert.That(h.WalletReadOnly("BPNL000000000002"))
	assert.ThatNot(h.WalletReadOnly("BPNL000000000003"))
	assert.ThatNot(h.WalletReadOnly(""))
	assert.SLen(h.ReadOnlyBPNs(), 1)
}

func TestHub_Timeout(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	h := &Hub{}
	assert.Equal(h.Timeout(), HTTPReqTimeout)
	h.SetTimeout(5 * time.Second)
	assert.Equal(h.Timeout(), 5*time.Second)
}

func TestDecodeB64(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	data, err := DecodeB64("aGVsbG8=")
	assert.NoError(err)
	assert.Equal(string(data), "hello")

	data, err = DecodeB64("aGVsbG8")
	assert.NoError(err)
	assert.Equal(string(data), "hello")

	_, err = DecodeB64("!!")
	assert.Error(err)
}
