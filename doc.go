/*
Package main is an application package for the Findy Custodian service. The
custodian hosts SSI wallets for business partners identified by their
business-partner number (BPN). It keeps a local record of every wallet and
delegates the key custody, the ledger writes and the JSON-LD signatures to a
multi-tenant identity agent (ACA-Py) where each hosted wallet is a sub-wallet.

You can use the custodian for:

1. Creating, listing and removing hosted wallets.

2. Managing the service endpoints of the wallets' DID documents.

3. Issuing, storing, presenting and verifying verifiable credentials, and
signing messages with the wallet keys.

4. Auditing the consistency of the local wallet records and the agent's
sub-wallets.

# About the build-in CLI

The compilation includes the command and flag sets to start and ping the
service:

	findy-custodian custodian start --agent-url http://localhost:8031 \
		--root-bpn BPNL000000000000
	findy-custodian custodian ping --base-address http://localhost:8080

Every flag can be given as an environment variable with the FCLI prefix, e.g.
FCLI_CUSTODIAN_AGENT_URL, or in a config file given with --config.

# Storage

Wallet records are stored either to an encrypted bolt file (the default) or to
PostgreSQL (--store postgres). The sub-wallet keys are kept in the enclave, a
sealed bolt file of its own. Both bolt files are backed up daily.
*/
package main
