package cmd

import (
	"os"
	"testing"

	"github.com/lainio/err2/assert"
)

func TestExecute(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		name string
		args []string
	}{
		{
			name: "custodian start",
			args: []string{"cmd",
				"custodian", "start", "--dry-run",
				"--agent-url", "http://localhost:8031",
				"--root-bpn", "BPNL000000000000",
				"--read-only-bpns", "BPNL000000000001,BPNL000000000002",
			},
		},
		{
			name: "custodian start postgres",
			args: []string{"cmd",
				"custodian", "start", "--dry-run",
				"--agent-url", "http://localhost:8031",
				"--root-bpn", "BPNL000000000000",
				"--store", "postgres",
				"--database-url", "postgres://custodian@localhost/custodian",
			},
		},
		{
			name: "custodian ping",
			args: []string{"cmd",
				"custodian", "ping", "--dry-run",
				"--base-address", "http://localhost:8080",
			},
		},
		{
			name: "version",
			args: []string{"cmd", "version"},
		},
		{
			name: "version verbose",
			args: []string{"cmd", "version", "--verbose"},
		},
		{
			name: "completion fish",
			args: []string{"cmd", "completion", "fish"},
		},
	}

	for _, test := range tests {
		os.Args = test.args
		rootCmd.SilenceUsage = true
		rootCmd.SilenceErrors = true

		t.Run(test.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			assert.NoError(rootCmd.Execute())
		})
	}
}

func TestExecute_Invalid(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd",
		"custodian", "start", "--dry-run",
		"--agent-url", "http://localhost:8031",
		"--root-bpn", "BPNL000000000000",
		"--store", "mongo",
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	assert.Error(rootCmd.Execute())
	startCmd.Store.Type = "bolt"
}

func TestGetEnvName(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.Equal(getEnvName("", "logging"), "FCLI_LOGGING")
	assert.Equal(getEnvName("custodian", "AGENT_URL"), "FCLI_CUSTODIAN_AGENT_URL")
	assert.Equal(flagInfo("root BPN", "custodian", "ROOT_BPN"), "root BPN, FCLI_CUSTODIAN_ROOT_BPN")
}
