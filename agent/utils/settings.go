package utils

import (
	"slices"
	"sync"
	"time"
)

const HTTPReqTimeout = 1 * time.Minute

var Settings = &Hub{}

type Hub struct {
	l sync.RWMutex

	rootBPN      string   // operator wallet, its services are not managed via the API
	readOnlyBPNs []string // other wallets whose services cannot be changed

	storeBackupTime   string // daily time of the wallet store backup, HH:MM
	enclaveBackupTime string // daily time of the enclave backup, HH:MM
	auditTime         string // daily time of the wallet reconciliation, HH:MM

	hostAddr    string        // public base URL of this service
	versionInfo string        // Version number etc. in free format as a string
	timeout     time.Duration // timeout setting for http requests and connections
}

func (h *Hub) RootBPN() string {
	h.l.RLock()
	defer h.l.RUnlock()
	return h.rootBPN
}

func (h *Hub) SetRootBPN(bpn string) {
	h.l.Lock()
	defer h.l.Unlock()
	h.rootBPN = bpn
}

func (h *Hub) ReadOnlyBPNs() []string {
	h.l.RLock()
	defer h.l.RUnlock()
	return slices.Clone(h.readOnlyBPNs)
}

// SetReadOnlyBPNs sets the wallets whose service endpoints are managed
// outside of the API. Empty values are dropped.
func (h *Hub) SetReadOnlyBPNs(bpns []string) {
	h.l.Lock()
	defer h.l.Unlock()
	h.readOnlyBPNs = slices.DeleteFunc(slices.Clone(bpns), func(s string) bool {
		return s == ""
	})
}

// WalletReadOnly tells if the service endpoints of the wallet cannot be
// changed. The root wallet is always read-only.
func (h *Hub) WalletReadOnly(bpn string) bool {
	h.l.RLock()
	defer h.l.RUnlock()
	if bpn == "" {
		return false
	}
	return bpn == h.rootBPN || slices.Contains(h.readOnlyBPNs, bpn)
}

func (h *Hub) StoreBackupTime() string {
	return h.storeBackupTime
}

func (h *Hub) SetStoreBackupTime(t string) {
	h.storeBackupTime = t
}

func (h *Hub) EnclaveBackupTime() string {
	return h.enclaveBackupTime
}

func (h *Hub) SetEnclaveBackupTime(t string) {
	h.enclaveBackupTime = t
}

func (h *Hub) AuditTime() string {
	return h.auditTime
}

func (h *Hub) SetAuditTime(t string) {
	h.auditTime = t
}

// SetTimeout sets the default timeout for HTTP requests.
func (h *Hub) SetTimeout(to time.Duration) {
	h.timeout = to
}

// SetVersionInfo sets current version info of this service. The info is
// shown by the version endpoint.
func (h *Hub) SetVersionInfo(info string) {
	h.versionInfo = info
}

// SetHostAddr sets the public base URL of this service. It's used as the
// issuer prefix of the credential IDs.
func (h *Hub) SetHostAddr(addr string) {
	h.hostAddr = addr
}

func (h *Hub) HostAddr() string {
	return h.hostAddr
}

func (h *Hub) VersionInfo() string {
	if h.versionInfo == "" {
		return "findy-custodian v. " + Version
	}
	return h.versionInfo
}

func (h *Hub) Timeout() time.Duration {
	if h.timeout == 0 {
		return HTTPReqTimeout
	}
	return h.timeout
}
