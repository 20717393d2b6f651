package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgierz/snakemake-wrapper-esm-master/wrapper"
)

var (
	payloadExpID   string // Experiment ID
	payloadBaseDir string // Experiment base directory
	payloadCluster string // Optional cluster token narrowing the script search
	payloadDate    string // Optional date token narrowing the script search
)

// payloadCmd runs the execution-time half of the bridge: locate the generated
// batch script, strip scheduler directives, and materialize an executable
// fragment. The fragment path is printed on stdout for the caller to execute
// inside its granted allocation.
var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Materialize the directive-free executable fragment for a task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fragmentPath, err := wrapper.RunPayload(wrapper.PayloadOptions{
			ExpID:   payloadExpID,
			BaseDir: payloadBaseDir,
			Hints:   wrapper.ScriptHints{Cluster: payloadCluster, Date: payloadDate},
		})
		if err != nil {
			return fmt.Errorf("payload extraction failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), fragmentPath)
		return nil
	},
}

func init() {
	payloadCmd.Flags().StringVarP(&payloadExpID, "expid", "e", wrapper.DefaultExpID, "Experiment ID")
	payloadCmd.Flags().StringVar(&payloadBaseDir, "base-dir", "", "Experiment base directory (default: current directory)")
	payloadCmd.Flags().StringVar(&payloadCluster, "cluster", "", "Cluster token of the generated script name (default: any)")
	payloadCmd.Flags().StringVar(&payloadDate, "date", "", "Date token of the generated script name (default: any)")

	rootCmd.AddCommand(payloadCmd)
}
