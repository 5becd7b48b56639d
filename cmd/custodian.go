package cmd

import (
	"log"
	"os"

	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/findy-network/findy-custodian/cmds/custodian"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

// custodianCmd represents the custodian command
var custodianCmd = &cobra.Command{
	Use:   "custodian",
	Short: "Parent command for starting and pinging custodian",
	Long: `
Parent command for starting and pinging custodian
	`,
	Run: func(cmd *cobra.Command, args []string) {
		SubCmdNeeded(cmd)
	},
}

var custodianStartEnvs = map[string]string{
	"server-port":         "SERVER_PORT",
	"host-address":        "HOST_ADDRESS",
	"host-port":           "HOST_PORT",
	"host-scheme":         "HOST_SCHEME",
	"agent-url":           "AGENT_URL",
	"agent-api-key":       "AGENT_API_KEY",
	"ledger-url":          "LEDGER_URL",
	"network-identifier":  "NETWORK_IDENTIFIER",
	"root-bpn":            "ROOT_BPN",
	"read-only-bpns":      "READ_ONLY_BPNS",
	"store":               "STORE",
	"store-file":          "STORE_FILE",
	"store-key":           "STORE_KEY",
	"database-url":        "DATABASE_URL",
	"store-backup-time":   "STORE_BACKUP_TIME",
	"enclave-path":        "ENCLAVE_PATH",
	"enclave-key":         "ENCLAVE_KEY",
	"enclave-backup":      "ENCLAVE_BACKUP",
	"enclave-backup-time": "ENCLAVE_BACKUP_TIME",
	"audit-time":          "AUDIT_TIME",
	"rate-limit":          "RATE_LIMIT",
	"cors-origins":        "CORS_ORIGINS",
	"http-timeout":        "HTTP_TIMEOUT",
}

// startCustodianCmd represents the custodian start subcommand
var startCustodianCmd = &cobra.Command{
	Use:   "start",
	Short: "Command for starting custodian",
	Long: `
Start command for findy custodian server.

Example
	findy-custodian custodian start \
		--agent-url http://localhost:8031 \
		--agent-api-key secret \
		--root-bpn BPNL000000000000 \
		--enclave-key 15308490f1e4026284594dd08d31291bc8ef2aeac730d0daf6ff87bb92d4336c
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(custodianStartEnvs, "CUSTODIAN")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		try.To(startCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(startCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var custodianPingEnvs = map[string]string{
	"base-address": "PING_BASE_ADDRESS",
}

// pingCustodianCmd represents the custodian ping subcommand
var pingCustodianCmd = &cobra.Command{
	Use:   "ping",
	Short: "Command for pinging custodian",
	Long: `
Pings custodian.
If custodian works fine, ping ok with server's version info is printed.

Example
	findy-custodian custodian ping \
		--base-address http://localhost:8080
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(custodianPingEnvs, "CUSTODIAN")
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer err2.Handle(&err)

		try.To(pingCmd.Validate())
		if !rootFlags.dryRun {
			cmd.SilenceUsage = true
			try.To1(pingCmd.Exec(os.Stdout))
		}
		return nil
	},
}

var (
	startCmd = custodian.DefaultValues
	pingCmd  = custodian.PingCmd{}
)

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	startCmd.VersionInfo = "findy-custodian v. " + utils.Version
	name := custodianCmd.Name()

	flags := startCustodianCmd.Flags()
	flags.UintVar(&startCmd.ServerPort, "server-port", startCmd.ServerPort, flagInfo("server port", name, custodianStartEnvs["server-port"]))
	flags.StringVar(&startCmd.HostAddr, "host-address", startCmd.HostAddr, flagInfo("host address", name, custodianStartEnvs["host-address"]))
	flags.UintVar(&startCmd.HostPort, "host-port", startCmd.HostPort, flagInfo("host port", name, custodianStartEnvs["host-port"]))
	flags.StringVar(&startCmd.HostScheme, "host-scheme", startCmd.HostScheme, flagInfo("scheme of the custodian's host address", name, custodianStartEnvs["host-scheme"]))
	flags.StringVar(&startCmd.AgentURL, "agent-url", "", flagInfo("admin URL of the identity agent", name, custodianStartEnvs["agent-url"]))
	flags.StringVar(&startCmd.AgentAPIKey, "agent-api-key", "", flagInfo("admin API key of the identity agent", name, custodianStartEnvs["agent-api-key"]))
	flags.StringVar(&startCmd.LedgerURL, "ledger-url", "", flagInfo("URL of the ledger registration service", name, custodianStartEnvs["ledger-url"]))
	flags.StringVar(&startCmd.NetworkIdentifier, "network-identifier", "", flagInfo("DID network identifier, empty for unpublished DIDs", name, custodianStartEnvs["network-identifier"]))
	flags.StringVar(&startCmd.RootBPN, "root-bpn", "", flagInfo("BPN of the root wallet", name, custodianStartEnvs["root-bpn"]))
	flags.StringSliceVar(&startCmd.ReadOnlyBPNs, "read-only-bpns", nil, flagInfo("BPNs of the wallets whose services cannot be changed", name, custodianStartEnvs["read-only-bpns"]))
	flags.StringVar(&startCmd.Store.Type, "store", startCmd.Store.Type, flagInfo("wallet store type: bolt or postgres", name, custodianStartEnvs["store"]))
	flags.StringVar(&startCmd.Store.FileName, "store-file", startCmd.Store.FileName, flagInfo("wallet store file of bolt store", name, custodianStartEnvs["store-file"]))
	flags.StringVar(&startCmd.Store.Key, "store-key", "", flagInfo("SHA-256 32 bytes in hex ascii for bolt store", name, custodianStartEnvs["store-key"]))
	flags.StringVar(&startCmd.Store.DatabaseURL, "database-url", "", flagInfo("PostgreSQL connection URL", name, custodianStartEnvs["database-url"]))
	flags.StringVar(&startCmd.StoreBackupTime, "store-backup-time", startCmd.StoreBackupTime, flagInfo("Time to start wallet store backup in HH:MM[:SS]", name, custodianStartEnvs["store-backup-time"]))
	flags.StringVar(&startCmd.EnclavePath, "enclave-path", startCmd.EnclavePath, flagInfo("Enclave full file name", name, custodianStartEnvs["enclave-path"]))
	flags.StringVar(&startCmd.EnclaveKey, "enclave-key", "", flagInfo("SHA-256 32 bytes in hex ascii", name, custodianStartEnvs["enclave-key"]))
	flags.StringVar(&startCmd.EnclaveBackupName, "enclave-backup", "", flagInfo("Base name for enclave backup file", name, custodianStartEnvs["enclave-backup"]))
	flags.StringVar(&startCmd.EnclaveBackupTime, "enclave-backup-time", startCmd.EnclaveBackupTime, flagInfo("Time to start enclave backup in HH:MM[:SS]", name, custodianStartEnvs["enclave-backup-time"]))
	flags.StringVar(&startCmd.AuditTime, "audit-time", startCmd.AuditTime, flagInfo("Time to start reconciliation audit in HH:MM[:SS]", name, custodianStartEnvs["audit-time"]))
	flags.IntVar(&startCmd.RateLimit, "rate-limit", 0, flagInfo("requests per second, 0 for no limit", name, custodianStartEnvs["rate-limit"]))
	flags.StringSliceVar(&startCmd.CORSOrigins, "cors-origins", nil, flagInfo("allowed CORS origins", name, custodianStartEnvs["cors-origins"]))
	flags.DurationVar(&startCmd.HTTPTimeout, "http-timeout", startCmd.HTTPTimeout, flagInfo("timeout of requests and agent calls", name, custodianStartEnvs["http-timeout"]))

	p := pingCustodianCmd.Flags()
	p.StringVar(&pingCmd.BaseAddr, "base-address", "http://localhost:8080", flagInfo("base address of custodian", name, custodianPingEnvs["base-address"]))

	rootCmd.AddCommand(custodianCmd)
	custodianCmd.AddCommand(startCustodianCmd)
	custodianCmd.AddCommand(pingCustodianCmd)
}
