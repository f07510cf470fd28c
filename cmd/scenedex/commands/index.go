package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var indexForce bool

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [root]",
		Short: "Index a project directory",
		Long: `Walk a project directory, chunk and embed every eligible text file,
and extract the relationship graph. Files whose content is unchanged
since the last run are skipped; files deleted from disk are removed
from the index.

Examples:
  scenedex index --user alice --project game .
  scenedex index --force /path/to/project`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIndex,
	}

	cmd.Flags().BoolVar(&indexForce, "force", false, "Re-index files even when unchanged")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	tenant, err := tenantFromFlags()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	svc, log, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	log.Infow("indexing project", "root", root, "force", indexForce)

	start := time.Now()
	stats, err := svc.IndexProject(cmd.Context(), tenant, root, indexForce)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", root, err)
	}
	elapsed := time.Since(start)

	if jsonOutput {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total files:\t%d\n", stats.Total)
	fmt.Fprintf(w, "Indexed:\t%d\n", stats.Indexed)
	fmt.Fprintf(w, "Skipped:\t%d\n", stats.Skipped)
	fmt.Fprintf(w, "Failed:\t%d\n", stats.Failed)
	fmt.Fprintf(w, "Removed:\t%d\n", stats.Removed)
	fmt.Fprintf(w, "Elapsed:\t%s\n", elapsed.Round(time.Millisecond))
	w.Flush()

	for _, e := range stats.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", e)
	}

	return nil
}
