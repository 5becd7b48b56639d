package custodian

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/findy-network/findy-custodian/server"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

var testDir string

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	try.To(flag.Set("logtostderr", "true"))
	testDir = try.To1(os.MkdirTemp("", "custodian-cmd"))
}

func tearDown() {
	_ = os.RemoveAll(testDir)
}

func validCmd() Cmd {
	c := DefaultValues
	c.AgentURL = "http://localhost:8031"
	c.RootBPN = "BPNL00000000ROOT"
	c.EnclavePath = filepath.Join(testDir, "enclave.bolt")
	c.EnclaveBackupName = filepath.Join(testDir, "enclave.bolt.bak")
	c.Store = api.Config{Type: api.TypeBolt, FileName: filepath.Join(testDir, "custodian.bolt")}
	return c
}

func TestCmd_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Cmd)
		ok     bool
	}{
		{"valid", func(*Cmd) {}, true},
		{"no agent", func(c *Cmd) { c.AgentURL = "" }, false},
		{"no root", func(c *Cmd) { c.RootBPN = "" }, false},
		{"no port", func(c *Cmd) { c.ServerPort = 0 }, false},
		{"no enclave", func(c *Cmd) { c.EnclavePath = "" }, false},
		{"bad backup time", func(c *Cmd) { c.StoreBackupTime = "25:00" }, false},
		{"bad audit time", func(c *Cmd) { c.AuditTime = "noon" }, false},
		{"postgres without url", func(c *Cmd) { c.Store = api.Config{Type: api.TypePostgres} }, false},
		{"postgres", func(c *Cmd) {
			c.Store = api.Config{Type: api.TypePostgres, DatabaseURL: "postgres://localhost/custodian"}
		}, true},
		{"negative rate limit", func(c *Cmd) { c.RateLimit = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			c := validCmd()
			tt.modify(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(err)
			} else {
				assert.Error(err)
			}
		})
	}
}

func TestCmd_SetupAndPing(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	c := validCmd()
	c.VersionInfo = "findy-custodian test"
	c.PreRun()
	assert.NoError(c.Setup(context.Background()))
	defer c.closeAll()

	assert.Equal(utils.Settings.RootBPN(), c.RootBPN)
	assert.That(utils.Settings.WalletReadOnly(c.RootBPN))
	assert.Equal(utils.Settings.HostAddr(), "http://localhost:8080")

	c.startScheduledTasks()
	defer c.cron.Stop()
	assert.Equal(c.cron.Len(), 3)

	srv := server.StartTestHTTPServer(c.cust, server.Config{})
	defer srv.Close()

	var b bytes.Buffer
	p := PingCmd{BaseAddr: srv.URL + "/"}
	assert.NoError(p.Validate())
	_, err := p.Exec(&b)
	assert.NoError(err)
	assert.That(strings.Contains(b.String(), "ping ok."))
	assert.That(strings.Contains(b.String(), "findy-custodian test"))

	_, err = PingCmd{BaseAddr: srv.URL + "/nothing"}.Exec(nil)
	assert.Error(err)
	assert.Error(PingCmd{}.Validate())
}
