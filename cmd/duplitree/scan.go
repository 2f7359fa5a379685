package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"duplitree/internal/hash"
	"duplitree/internal/report"
	"duplitree/internal/store"
)

var algorithm string

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Record a directory tree and hash its size collisions",
	Long: `Create a new scan rooted at <directory> and run the whole pipeline:
walk the tree, read every file's size and timestamps, then hash the files
that share their size with another file.

The hash algorithm defaults to the config value. Supported: ` + algorithmNames(),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		alg, err := a.cfg.HashAlgorithm()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("algorithm") {
			if alg, err = hash.ParseAlgorithm(algorithm); err != nil {
				return err
			}
		}

		scan, err := a.engine.CreateScan(cmd.Context(), args[0], alg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scan #%d: %s (%s)\n", scan.ID, scan.BasePath, scan.Algorithm)

		return process(cmd, a, scan)
	},
}

var rescanCmd = &cobra.Command{
	Use:   "rescan <scan-id>",
	Short: "Run the pipeline again on an existing scan",
	Long: `Walk the scan root again, adding entries that appeared since the last run,
refresh metadata for every file and hash the candidates that have no hash.
Files whose size or modification time changed are hashed again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		scan, err := a.scan(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scan #%d: %s (%s)\n", scan.ID, scan.BasePath, scan.Algorithm)

		return process(cmd, a, scan)
	},
}

func process(cmd *cobra.Command, a *app, scan *store.Scan) error {
	result, err := a.engine.Process(cmd.Context(), scan)
	fmt.Fprint(cmd.OutOrStdout(), report.FormatProcess(result))
	if err != nil {
		return err
	}

	stats, err := a.store.Stats(cmd.Context(), scan.ID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.FormatScans([]*store.Scan{scan}, map[int64]*store.ScanStats{scan.ID: stats}))

	if len(result.Skipped()) > 0 {
		return errSkipped
	}
	return nil
}

func algorithmNames() string {
	var names string
	for i, alg := range hash.Algorithms() {
		if i > 0 {
			names += ", "
		}
		names += alg.String()
	}
	return names
}

func init() {
	scanCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "hash algorithm (overrides config)")
}
