package cfg

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

var testConfig = []WalletStorage{
	{api.Config{
		Type:     api.TypeBolt,
		FileName: "wallets_1.bolt",
		Key:      "15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c",
	}},
	{api.Config{
		FileName: "wallets_2.bolt",
	}},
}

func TestMain(m *testing.M) {
	setUp()
	code := m.Run()
	tearDown()
	os.Exit(code)
}

func setUp() {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("stderrthreshold", "WARNING"))
	try.To(flag.Set("v", "10"))
	flag.Parse()
}

func tearDown() {
	for _, cfg := range testConfig {
		_ = os.RemoveAll(cfg.FileName)
	}
}

func TestWalletStorage_Open(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()
	ctx := context.Background()

	for round := 0; round < 2; round++ {
		for _, cfg := range testConfig {
			s, err := cfg.Open(ctx)
			assert.NoError(err)
			assert.INotNil(s)

			s2, err := cfg.Open(ctx)
			assert.NoError(err)
			assert.Equal(s, s2)
			assert.That(cfg.WantsBackup())

			assert.NoError(cfg.Close())
			assert.NoError(cfg.Close())
		}
	}
}

func TestWalletStorage_Validate(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	tests := []struct {
		name string
		cfg  api.Config
		ok   bool
	}{
		{"bolt", api.Config{Type: api.TypeBolt, FileName: "x.bolt"}, true},
		{"default bolt", api.Config{FileName: "x.bolt"}, true},
		{"bolt no file", api.Config{Type: api.TypeBolt}, false},
		{"postgres", api.Config{Type: api.TypePostgres, DatabaseURL: "postgres://localhost/db"}, true},
		{"postgres no url", api.Config{Type: api.TypePostgres}, false},
		{"unknown", api.Config{Type: "mongo"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			c := WalletStorage{tt.cfg}
			err := c.Validate()
			if tt.ok {
				assert.NoError(err)
			} else {
				assert.Error(err)
			}
		})
	}

	pg := WalletStorage{api.Config{Type: api.TypePostgres, DatabaseURL: "u"}}
	assert.ThatNot(pg.WantsBackup())
}
