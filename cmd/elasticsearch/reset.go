package elasticsearch

import (
	"github.com/spf13/cobra"
	"github.com/stackvista/esconfig/internal/config"
	"github.com/stackvista/esconfig/internal/logger"
	"github.com/stackvista/esconfig/internal/output"
)

const (
	stepDelete = "DELETE"
	stepCreate = "CREATE"
)

func resetCmd(cliCtx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [environment]",
		Short: "Delete all indexes and recreate them with mappings",
		Long: `Delete every index declared in the config file and create it again with its
declared settings and mappings. A failing index does not stop the others.`,
		Args: cobra.MaximumNArgs(1),
		Run:  operationRun(cliCtx, runReset),
	}
}

func runReset(cliCtx *config.Context, args []string) error {
	return runOperation(cliCtx, "Reset", func(log *logger.Logger) error {
		t, err := loadTarget(cliCtx, args, log)
		if err != nil {
			return err
		}

		indexes, err := t.cfg.Indexes()
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
		log.Debugf("Cluster version %s, creating indexes with %s", clusterVersion, clusterVersion.CreateIndexMethod())

		if len(indexes) == 0 {
			log.Infof("No indexes to configure")
			return nil
		}

		summary := output.NewSummary("INDEX", stepDelete, stepCreate)

		for i, index := range indexes {
			row := summary.Add(itemLabel(i, index.Name))

			if err := index.Validate(); err != nil {
				log.Failuref("index %s: %v", itemLabel(i, index.Name), err)
				summary.Skip(row)
				continue
			}

			body, err := index.CreateBody()
			if err != nil {
				log.Failuref("index %s: %v", itemLabel(i, index.Name), err)
				summary.Skip(row)
				continue
			}

			log.Infof("Deleting index [%s]", index.Name)
			summary.Record(row, stepDelete, t.reportDelete(t.client.DeleteIndex(index.Name)))

			log.Infof("Creating index [%s]", index.Name)
			err = t.client.CreateIndex(index.Name, body, clusterVersion)
			t.report(err)
			summary.Record(row, stepCreate, err)
		}

		log.Println()
		t.printSummary(summary)

		return failedSteps(summary)
	})
}
