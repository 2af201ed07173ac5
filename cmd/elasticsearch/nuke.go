package elasticsearch

import (
	"github.com/spf13/cobra"
	"github.com/stackvista/esconfig/internal/config"
	"github.com/stackvista/esconfig/internal/logger"
)

func nukeCmd(cliCtx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "nuke [environment]",
		Short: "Destroy all data in the cluster",
		Long:  `Delete every index in the cluster of the resolved environment. There is no confirmation prompt.`,
		Args:  cobra.MaximumNArgs(1),
		Run:   operationRun(cliCtx, runNuke),
	}
}

func runNuke(cliCtx *config.Context, args []string) error {
	return runOperation(cliCtx, "Nuke 💣", func(log *logger.Logger) error {
		t, err := loadTarget(cliCtx, args, log)
		if err != nil {
			return err
		}

		if err := t.connect(); err != nil {
			return err
		}
		defer t.close()

		log.Infof("Deleting all indexes...")
		err = t.client.DeleteAll()
		t.report(err)

		return err
	})
}
