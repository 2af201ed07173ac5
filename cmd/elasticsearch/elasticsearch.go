package elasticsearch

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/stackvista/esconfig/internal/config"
)

// Commands returns the cluster maintenance commands, registered directly on the root command
func Commands(cliCtx *config.Context) []*cobra.Command {
	return []*cobra.Command{
		nukeCmd(cliCtx),
		resetCmd(cliCtx),
		resetIngestCmd(cliCtx),
		warmCmd(cliCtx),
	}
}

// operationRun adapts an operation to cobra. The operation has already
// printed its error, so only the exit status is left to set.
func operationRun(cliCtx *config.Context, run func(*config.Context, []string) error) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, args []string) {
		if err := run(cliCtx, args); err != nil {
			os.Exit(1)
		}
	}
}
