package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"duplitree/internal/report"
	"duplitree/internal/store"
)

var jsonOutput bool

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "List recorded scans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		scans, err := a.store.Scans(cmd.Context())
		if err != nil {
			return err
		}

		stats := make(map[int64]*store.ScanStats, len(scans))
		for _, s := range scans {
			if stats[s.ID], err = a.store.Stats(cmd.Context(), s.ID); err != nil {
				return err
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), report.FormatScans(scans, stats))
		return nil
	},
}

var dupesCmd = &cobra.Command{
	Use:   "dupes <scan-id>",
	Short: "Show groups of byte-identical files",
	Args:  cobra.ExactArgs(1),
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

		groups, err := a.engine.DuplicateGroups(cmd.Context(), scan)
		if err != nil {
			return err
		}

		if jsonOutput {
			return report.WriteJSON(cmd.OutOrStdout(), scan, groups)
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatDuplicates(groups))
		return nil
	},
}

var dirsCmd = &cobra.Command{
	Use:   "dirs <scan-id>",
	Short: "Show directories whose whole contents are duplicated",
	Long: `Show groups of directories with identical subtrees: the same relative
file names with the same contents. Only fully hashed subtrees are compared,
and a group is left out when its parents already form a group.`,
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

		groups, err := a.engine.DuplicateDirectories(cmd.Context(), scan)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), report.FormatDirectories(groups))
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <scan-id> [path]",
	Short: "Browse a scan as a tree",
	Long: `Print the directory tree of a scan expanded along [path] (default: the
scan root), followed by the files directly in that directory with their
size and duplicate count.`,
	Args: cobra.RangeArgs(1, 2),
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

		var selected string
		if len(args) == 2 {
			selected = args[1]
		}

		listing, err := a.engine.List(cmd.Context(), scan, selected)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), report.FormatListing(listing))
		return nil
	},
}

func init() {
	dupesCmd.Flags().BoolVar(&jsonOutput, "json", false, "write groups as JSON")
}
