package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stackvista/esconfig/cmd/elasticsearch"
	"github.com/stackvista/esconfig/cmd/version"
	"github.com/stackvista/esconfig/internal/config"
	"github.com/stackvista/esconfig/internal/logger"
)

// envPrefix namespaces the environment variables that stand in for global flags
const envPrefix = "ESCONFIG"

var (
	cliCtx  *config.Context
	rootCmd *cobra.Command
)

// addGlobalFlags adds the flags shared by every command
func addGlobalFlags(cmd *cobra.Command, cliCtx *config.Context) {
	cmd.PersistentFlags().StringVar(&cliCtx.Config.Dir, "dir", ".", "Directory holding "+config.FileName+" and "+config.EnvironmentFileName)
	cmd.PersistentFlags().StringVar(&cliCtx.Config.Kubeconfig, "kubeconfig", "", "Path to kubeconfig file, used for k8s:// hosts (default: ~/.kube/config)")
	cmd.PersistentFlags().BoolVar(&cliCtx.Config.Debug, "debug", false, "Enable debug output")
	cmd.PersistentFlags().BoolVarP(&cliCtx.Config.Quiet, "quiet", "q", false, "Suppress operational messages (only show errors and command output)")
}

// bindEnv fills every flag not given on the command line from its ESCONFIG_*
// environment variable, e.g. --dir from ESCONFIG_DIR.
func bindEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if setErr := cmd.Flags().Set(f.Name, v.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("invalid value for %s_%s: %w", envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), setErr)
		}
	})

	return err
}

func printBanner(cliCtx *config.Context) {
	log := logger.NewWithWriter(cliCtx.Config.Out, cliCtx.Config.Quiet, cliCtx.Config.Debug)
	log.Println()
	log.Infof("+----------------------------+")
	log.Infof("| Elasticsearch Configurator |")
	log.Infof("| %-26s |", "v"+version.Version)
	log.Infof("+----------------------------+")
	log.Println()
}

func newRootCmd(cliCtx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "esconfig",
		Short: "Manage the indexes and ingest pipelines of an Elasticsearch cluster",
		Long: `This tool makes it simple to manage a basic elastic search setup.
Through the use of a json file easily create index mappings, settings
and populate with data.`,
		// Unknown or missing commands fall through to Run and print help
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindEnv(cmd); err != nil {
				return err
			}
			printBanner(cliCtx)
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addGlobalFlags(cmd, cliCtx)

	for _, c := range elasticsearch.Commands(cliCtx) {
		cmd.AddCommand(c)
	}
	cmd.AddCommand(version.Cmd())

	return cmd
}

func init() {
	cobra.EnableCaseInsensitive = true

	cliCtx = config.NewContext()
	rootCmd = newRootCmd(cliCtx)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
