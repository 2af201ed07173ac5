package elasticsearch

import (
	"github.com/spf13/cobra"
	"github.com/stackvista/esconfig/internal/config"
	"github.com/stackvista/esconfig/internal/logger"
	"github.com/stackvista/esconfig/internal/output"
)

func resetIngestCmd(cliCtx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-ingest [environment]",
		Short: "Delete all ingest pipelines and recreate them",
		Long: `Delete every ingest pipeline declared under _ingest.pipelines in the config file
and put it again with its declared body.`,
		Args: cobra.MaximumNArgs(1),
		Run:  operationRun(cliCtx, runResetIngest),
	}
}

func runResetIngest(cliCtx *config.Context, args []string) error {
	return runOperation(cliCtx, "Reset Ingest", func(log *logger.Logger) error {
		t, err := loadTarget(cliCtx, args, log)
		if err != nil {
			return err
		}

		pipelines, err := t.cfg.Pipelines()
		if err != nil {
			return err
		}

		if err := t.connect(); err != nil {
			return err
		}
		defer t.close()

		clusterVersion, err := t.client.DetectVersion()
		if err != nil {
			return err
		}
		log.Debugf("Cluster version %s", clusterVersion)

		if len(pipelines) == 0 {
			log.Infof("No pipelines to configure")
			return nil
		}

		summary := output.NewSummary("PIPELINE", stepDelete, stepCreate)

		for i, pipeline := range pipelines {
			row := summary.Add(itemLabel(i, pipeline.Name))

			if err := pipeline.Validate(); err != nil {
				log.Failuref("pipeline %s: %v", itemLabel(i, pipeline.Name), err)
				summary.Skip(row)
				continue
			}

			log.Infof("Deleting pipeline [%s]", pipeline.Name)
			summary.Record(row, stepDelete, t.reportDelete(t.client.DeletePipeline(pipeline.Name)))

			log.Infof("Creating pipeline [%s]", pipeline.Name)
			err := t.client.PutPipeline(pipeline.Name, pipeline.Body)
			t.report(err)
			summary.Record(row, stepCreate, err)
		}

		log.Println()
		t.printSummary(summary)

		return failedSteps(summary)
	})
}
