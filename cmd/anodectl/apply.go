package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anodelabs/anode-agent/internal/cluster"
	"github.com/anodelabs/anode-agent/internal/deploy"
)

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("weights", "", "local weight artifact to publish (required)")
	applyCmd.Flags().String("dest", "", "cluster storage destination path (required)")
	applyCmd.Flags().String("site", "", "site configuration file to update")

	applyCmd.MarkFlagRequired("weights")
	applyCmd.MarkFlagRequired("dest")
}

var applyCmd = &cobra.Command{
	Use:     "apply",
	Short:   "publish a weight artifact and update cluster configuration",
	Example: "  anodectl apply --weights /tmp/WordCount.xml --dest /user/hadoop/anode/weights/WordCount.xml",
	RunE: func(cmd *cobra.Command, args []string) error {
		weightsPath, _ := cmd.Flags().GetString("weights")
		dest, _ := cmd.Flags().GetString("dest")
		site, _ := cmd.Flags().GetString("site")

		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if site == "" {
			site = cfg.Cluster.SitePath
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Cluster.CommandTimeout.Std())
		defer cancel()

		storage := cluster.NewDFSCLI(cfg.Cluster.DFSBinary, log.Logger)
		reconfig := cluster.NewDFSAdmin(cfg.Cluster.DFSBinary, log.Logger)
		runs, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer runs.Close()

		deployer := deploy.NewDeployer(storage, reconfig, runs, deployerOptions(cfg), log.Logger)
		result, err := deployer.Apply(ctx, weightsPath, dest, site)
		if err != nil {
			return err
		}

		fmt.Printf("published weights for %q (%d nodes) to %s\n", result.Workload, result.Nodes, dest)
		if result.ReconfigFailed {
			fmt.Printf("warning: reconfiguration signal failed (%v); restart the cluster's config consumer to load the new weights\n",
				result.ReconfigErr)
		}
		return nil
	},
}
