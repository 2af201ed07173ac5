package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X github.com/stackvista/esconfig/cmd/version.Version=..."
var Version = "dev"

func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the esconfig version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "esconfig %s\n", Version)
		},
	}
}
