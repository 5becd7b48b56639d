/*
Package custodian implements the CLI commands that start and ping the custodian
service.
*/
package custodian

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/findy-network/findy-custodian/agent/acapy"
	"github.com/findy-network/findy-custodian/agent/custodian"
	"github.com/findy-network/findy-custodian/agent/storage/api"
	"github.com/findy-network/findy-custodian/agent/storage/cfg"
	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/findy-network/findy-custodian/cmds"
	"github.com/findy-network/findy-custodian/enclave"
	"github.com/findy-network/findy-custodian/server"
	"github.com/go-co-op/gocron"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"golang.org/x/sync/errgroup"
)

type Cmd struct {
	ServerPort  uint
	HostAddr    string
	HostScheme  string
	HostPort    uint
	VersionInfo string

	AgentURL          string
	AgentAPIKey       string
	LedgerURL         string
	NetworkIdentifier string

	RootBPN      string
	ReadOnlyBPNs []string

	Store           api.Config
	StoreBackupTime string

	EnclavePath       string
	EnclaveKey        string
	EnclaveBackupName string
	EnclaveBackupTime string

	AuditTime   string
	RateLimit   int
	CORSOrigins []string
	HTTPTimeout time.Duration

	storage *cfg.WalletStorage
	store   api.WalletStore
	cust    *custodian.Custodian
	cron    *gocron.Scheduler
}

var DefaultValues = Cmd{
	ServerPort:        8080,
	HostAddr:          "localhost",
	HostScheme:        "http",
	HostPort:          8080,
	Store:             api.Config{Type: api.TypeBolt, FileName: "custodian.bolt"},
	StoreBackupTime:   "04:00",
	EnclavePath:       "enclave.bolt",
	EnclaveBackupTime: "03:00",
	AuditTime:         "05:00",
	HTTPTimeout:       utils.HTTPReqTimeout,
}

func (c *Cmd) Validate() error {
	if c.AgentURL == "" {
		return errors.New("agent url cannot be empty")
	}
	if c.RootBPN == "" {
		return errors.New("root BPN cannot be empty")
	}
	if c.HostAddr == "" {
		return errors.New("host address cannot be empty")
	}
	if c.ServerPort == 0 {
		return errors.New("server port cannot be zero")
	}
	if c.EnclavePath == "" {
		return errors.New("enclave path cannot be empty")
	}
	if c.EnclaveKey == "" {
		glog.Warning("enclave key is empty, sub-wallet keys are stored unencrypted")
	}
	if c.EnclaveBackupName == "" {
		glog.Warning("enclave backup name is empty, enclave isn't backed up")
	}
	storage := cfg.WalletStorage{Config: c.Store}
	if err := storage.Validate(); err != nil {
		return err
	}
	for _, t := range []string{c.StoreBackupTime, c.EnclaveBackupTime, c.AuditTime} {
		if t == "" {
			continue
		}
		if err := cmds.ValidateTime(t); err != nil {
			return err
		}
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}
	return nil
}

func (c *Cmd) PreRun() {
	utils.Settings.SetVersionInfo(c.VersionInfo)
}

func (c *Cmd) Exec(_ io.Writer) (r cmds.Result, err error) {
	return nil, StartCustodian(c)
}

// StartCustodian sets the service up and serves until SIGINT or SIGTERM.
func StartCustodian(c *Cmd) (err error) {
	defer err2.Handle(&err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer c.closeAll()
	try.To(c.Setup(ctx))
	return c.Run(ctx)
}

// Setup opens the enclave and the wallet store and builds the custodian.
func (c *Cmd) Setup(ctx context.Context) (err error) {
	defer err2.Handle(&err, "custodian setup")

	c.printStartupArgs()
	c.setRuntimeSettings()

	try.To(enclave.InitSealedBox(c.EnclavePath, c.EnclaveBackupName, c.EnclaveKey))

	c.storage = &cfg.WalletStorage{Config: c.Store}
	c.store = try.To1(c.storage.Open(ctx))

	agent := try.To1(acapy.New(acapy.Config{
		AdminURL:          c.AgentURL,
		APIKey:            c.AgentAPIKey,
		LedgerURL:         c.LedgerURL,
		NetworkIdentifier: c.NetworkIdentifier,
		Timeout:           c.HTTPTimeout,
	}))
	c.cust = custodian.New(agent, c.store, custodian.EnclaveKeys{}, utils.Settings)
	return nil
}

// Run starts the scheduled tasks and the HTTP server. It returns when the ctx
// is done or the server fails.
func (c *Cmd) Run(ctx context.Context) (err error) {
	defer err2.Handle(&err, "custodian run")

	c.startScheduledTasks()
	defer c.cron.Stop()

	srv := server.NewServer(c.cust, server.Config{
		Port:        c.ServerPort,
		RateLimit:   c.RateLimit,
		CORSOrigins: c.CORSOrigins,
		Timeout:     c.HTTPTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	return g.Wait()
}

func (c *Cmd) startScheduledTasks() {
	c.cron = gocron.NewScheduler(time.Now().Location())

	if bu, ok := c.store.(api.Backupper); ok && c.storage.WantsBackup() && c.StoreBackupTime != "" {
		glog.V(1).Infoln("wallet store backup time:", c.StoreBackupTime)
		_, err := c.cron.Every(1).Day().At(c.StoreBackupTime).Do(func() {
			if err := bu.Backup(); err != nil {
				glog.Errorln("wallet store backup:", err)
			}
		})
		if err != nil {
			glog.Warningln("wallet store backup start error:", err)
		}
	}
	if c.EnclaveBackupName != "" && c.EnclaveBackupTime != "" {
		glog.V(1).Infoln("enclave backup time:", c.EnclaveBackupTime)
		_, err := c.cron.Every(1).Day().At(c.EnclaveBackupTime).Do(func() {
			if err := enclave.Backup(); err != nil {
				glog.Errorln("enclave backup:", err)
			}
		})
		if err != nil {
			glog.Warningln("enclave backup start error:", err)
		}
	}
	if c.AuditTime != "" {
		glog.V(1).Infoln("reconciliation audit time:", c.AuditTime)
		_, err := c.cron.Every(1).Day().At(c.AuditTime).Do(c.audit)
		if err != nil {
			glog.Warningln("reconciliation audit start error:", err)
		}
	}
	c.cron.StartAsync()
}

func (c *Cmd) audit() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rep, err := c.cust.Reconciler.Run(ctx)
	if err != nil {
		glog.Errorln("reconciliation audit:", err)
		return
	}
	glog.V(1).Infof("reconciliation audit done: %d records, %d sub-wallets, consistent: %v",
		rep.Records, rep.SubWallets, rep.Consistent())
}

func (c *Cmd) printStartupArgs() {
	fmt.Println(
		"Agent URL:", c.AgentURL,
		"\nStore type:", c.Store.Type,
		"\nEnclave path:", c.EnclavePath,
		"\nHost address:", c.HostAddr,
		"\nHost port:", c.HostPort,
		"\nServer port:", c.ServerPort)
}

func (c *Cmd) setRuntimeSettings() {
	if c.HostPort == 0 {
		c.HostPort = c.ServerPort
	}
	utils.Settings.SetRootBPN(c.RootBPN)
	utils.Settings.SetReadOnlyBPNs(c.ReadOnlyBPNs)
	utils.Settings.SetStoreBackupTime(c.StoreBackupTime)
	utils.Settings.SetEnclaveBackupTime(c.EnclaveBackupTime)
	utils.Settings.SetAuditTime(c.AuditTime)
	utils.Settings.SetTimeout(c.HTTPTimeout)
	server.BuildHostAddr(c.HostScheme, c.HostAddr, c.HostPort)
}

func (c *Cmd) closeAll() {
	if c.storage != nil {
		if err := c.storage.Close(); err != nil {
			glog.Errorln("close wallet store:", err)
		}
	}
	enclave.Close()
}
