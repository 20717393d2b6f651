package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pgierz/snakemake-wrapper-esm-master/wrapper"
)

var (
	// CLI flags for resource resolution
	task         string            // esm_runscripts phase (prepcompute/compute/tidy/post)
	expID        string            // Experiment ID
	modifyConfig string            // Optional config override file passed to esm_runscripts -m
	baseDir      string            // Experiment base directory
	extraFlags   map[string]string // Additional flags passed through to esm_runscripts
)

// resourcesCmd resolves scheduling requirements for one task by running
// esm_runscripts --check and reducing the finished config to a flat resource
// mapping, printed as YAML on stdout.
var resourcesCmd = &cobra.Command{
	Use:   "resources <runscript>",
	Short: "Resolve scheduler resources for a runscript task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resources, err := wrapper.GetResources(wrapper.ResolveOptions{
			Runscript:    args[0],
			Task:         task,
			ExpID:        expID,
			ModifyConfig: modifyConfig,
			BaseDir:      baseDir,
			Extra:        extraFlags,
		})
		if err != nil {
			return fmt.Errorf("resource resolution failed: %w", err)
		}

		out, err := yaml.Marshal(resources)
		if err != nil {
			return fmt.Errorf("encoding resources: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	resourcesCmd.Flags().StringVarP(&task, "task", "t", wrapper.TaskCompute, "Phase to resolve (prepcompute, compute, tidy, post)")
	resourcesCmd.Flags().StringVarP(&expID, "expid", "e", wrapper.DefaultExpID, "Experiment ID")
	resourcesCmd.Flags().StringVarP(&modifyConfig, "modify-config", "m", "", "Config override file passed to esm_runscripts")
	resourcesCmd.Flags().StringVar(&baseDir, "base-dir", "", "Experiment base directory (default: current directory)")
	resourcesCmd.Flags().StringToStringVar(&extraFlags, "extra", nil, "Additional key=value flags passed through to esm_runscripts")

	rootCmd.AddCommand(resourcesCmd)
}
