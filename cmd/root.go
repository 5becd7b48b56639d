package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/findy-network/findy-custodian/cmds"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "FCLI"
	configName = "findy-custodian"
)

var rootCmd = &cobra.Command{
	Version: utils.Version,
	Use:     "findy-custodian",
	Short:   "Findy custodian service for managed SSI wallets",
	Long: `
Findy custodian service for managed SSI wallets. It hosts wallets, DID
documents, verifiable credentials and presentations for business partners on
top of a multi-tenant identity agent.

Every flag can be given as an environment variable (shown in the flag help) or
in a config file. Without --config the file findy-custodian.yaml is searched
from the working directory and from $HOME/.findy-custodian.
	`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmds.ParseLoggingArgs(rootFlags.logging)
		for c := cmd; c != nil; c = c.Parent() {
			applyViperValues(c)
		}
		startCmd.PreRun()
	},
}

// Execute runs the root command and exits with 1 on error. Cobra has printed
// the error already.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for embedding the custodian commands into
// another CLI.
func RootCmd() *cobra.Command {
	return rootCmd
}

// DryRun returns a value of a dry run flag.
func DryRun() bool {
	return rootFlags.dryRun
}

type RootFlags struct {
	cfgFile string
	dryRun  bool
	logging string
}

var rootFlags = RootFlags{}

var rootEnvs = map[string]string{
	"config":  "CONFIG",
	"logging": "LOGGING",
	"dry-run": "DRY_RUN",
}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.cfgFile, "config", "", flagInfo("configuration file", "", rootEnvs["config"]))
	flags.StringVar(&rootFlags.logging, "logging", "-logtostderr=true -v=2", flagInfo("logging startup arguments", "", rootEnvs["logging"]))
	flags.BoolVarP(&rootFlags.dryRun, "dry-run", "n", false, flagInfo("perform a trial run with no changes made", "", rootEnvs["dry-run"]))

	for _, name := range []string{"logging", "dry-run"} {
		try.To(viper.BindPFlag(name, flags.Lookup(name)))
	}
	try.To(BindEnvs(rootEnvs, ""))
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := readConfigFile(); err != nil {
		log.Println("config file:", err)
	}
	rootFlags.logging = viper.GetString("logging")
	rootFlags.dryRun = viper.GetBool("dry-run")
}

// readConfigFile reads the file given by the flag or the env. If neither is
// set, the default locations are tried and a missing file is not an error.
func readConfigFile() error {
	file := rootFlags.cfgFile
	if file == "" {
		file = os.Getenv(getEnvName("", "config"))
	}
	if file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
		fmt.Println("Using config file:", viper.ConfigFileUsed())
		return nil
	}

	viper.SetConfigName(configName)
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, "."+configName))
	}
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// BindEnvs binds the flag keys of envMap to env variables of the command. The
// cmdName is empty for the root flags.
func BindEnvs(envMap map[string]string, cmdName string) (err error) {
	defer err2.Handle(&err)
	for flagKey, envName := range envMap {
		try.To(viper.BindEnv(flagKey, getEnvName(cmdName, envName)))
	}
	return nil
}

func flagInfo(info, cmdPrefix, envName string) string {
	return info + ", " + getEnvName(cmdPrefix, envName)
}

func getEnvName(cmdName, envName string) string {
	if cmdName == "" {
		return envPrefix + "_" + strings.ToUpper(envName)
	}
	return envPrefix + "_" + strings.ToUpper(cmdName) + "_" + envName
}

// applyViperValues sets the local flags of cmd from viper, i.e. from the env
// and the config file. Flags given on the command line win.
func applyViperValues(cmd *cobra.Command) {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	flags := cmd.LocalFlags()
	try.To(viper.BindPFlags(flags))
	if cmd.PreRunE != nil {
		try.To(cmd.PreRunE(cmd, nil))
	}
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		var val string
		if f.Value.Type() == "stringSlice" {
			val = strings.Join(viper.GetStringSlice(f.Name), ",")
		} else {
			val = viper.GetString(f.Name)
		}
		if val != "" {
			try.To(flags.Set(f.Name, val))
		}
	})
}

// SubCmdNeeded prints the help and exits, cmd is only a parent command.
func SubCmdNeeded(cmd *cobra.Command) {
	fmt.Println("Subcommand needed!")
	_ = cmd.Help()
	os.Exit(1)
}
