package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anodelabs/anode-agent/internal/cluster"
	"github.com/anodelabs/anode-agent/internal/deploy"
)

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().StringP("workload", "w", "", "workload name to match in history file names (required)")
	computeCmd.Flags().StringP("out", "o", "", "output path for the weight artifact (required)")
	computeCmd.Flags().String("history-path", "", "cluster directory holding job-history documents")

	computeCmd.MarkFlagRequired("workload")
	computeCmd.MarkFlagRequired("out")
}

var computeCmd = &cobra.Command{
	Use:     "compute",
	Short:   "recompute node weights from job history",
	Example: "  anodectl compute --workload WordCount --out /tmp/WordCount.xml",
	RunE: func(cmd *cobra.Command, args []string) error {
		workload, _ := cmd.Flags().GetString("workload")
		out, _ := cmd.Flags().GetString("out")
		historyPath, _ := cmd.Flags().GetString("history-path")

		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if historyPath == "" {
			historyPath = cfg.Cluster.HistoryPath
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Cluster.CommandTimeout.Std())
		defer cancel()

		storage := cluster.NewDFSCLI(cfg.Cluster.DFSBinary, log.Logger)
		runs, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer runs.Close()

		deployer := deploy.NewDeployer(storage, nil, runs, deployerOptions(cfg), log.Logger)
		result, err := deployer.ComputeWeights(ctx, workload, historyPath, out)
		if err != nil {
			return err
		}

		fmt.Printf("wrote weights for %d nodes to %s (%d records, %d skipped elements)\n",
			len(result.Artifact.Nodes), out, result.Records, result.SkippedElements)
		return nil
	},
}
