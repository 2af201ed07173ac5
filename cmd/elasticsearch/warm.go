package elasticsearch

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/stackvista/esconfig/internal/config"
	"github.com/stackvista/esconfig/internal/logger"
	"github.com/stackvista/esconfig/internal/warmup"
)

// Swapped out in tests to keep the error log out of the shared temp dir
var newWarmRunner = func(dir string, stdout io.Writer) *warmup.Runner {
	return warmup.NewRunner(dir, stdout)
}

func warmCmd(cliCtx *config.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "warm [environment]",
		Short: "Run the warm-up command for the environment",
		Long: `Run the warm-up command configured under warm for the resolved environment.
Every ` + warmup.HostPlaceholder + ` in the command is replaced with the cluster URL. The
command's output is echoed as it runs; its error output is appended to ` + warmup.DefaultErrorLog + `.`,
		Args: cobra.MaximumNArgs(1),
		Run:  operationRun(cliCtx, runWarm),
	}
}

func runWarm(cliCtx *config.Context, args []string) error {
	return runOperation(cliCtx, "Warm", func(log *logger.Logger) error {
		t, err := loadTarget(cliCtx, args, log)
		if err != nil {
			return err
		}

		template, err := t.cfg.WarmFor(t.env)
		if err != nil {
			return err
		}

		if err := t.forward(); err != nil {
			return err
		}
		defer t.close()

		command := warmup.Render(template, t.host)
		log.Infof("Executing command: %s", command)

		runner := newWarmRunner(cliCtx.Config.Dir, log.Writer())
		if err := runner.Run(context.Background(), command); err != nil {
			return err
		}

		log.Successf("Warm-up complete")
		return nil
	})
}
