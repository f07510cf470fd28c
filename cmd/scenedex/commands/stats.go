package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics for the tenant",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	tenant, err := tenantFromFlags()
	if err != nil {
		return err
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.Stats(cmd.Context(), tenant)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if jsonOutput {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Files indexed:\t%d\n", stats.FilesIndexed)
	fmt.Fprintf(w, "Total chunks:\t%d\n", stats.TotalChunks)
	fmt.Fprintf(w, "Graph nodes:\t%d\n", stats.GraphNodes)
	fmt.Fprintf(w, "Graph edges:\t%d\n", stats.GraphEdges)
	if !stats.LastIndexed.IsZero() {
		fmt.Fprintf(w, "Last indexed:\t%s\n", stats.LastIndexed.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Storage:\t%s\n", stats.Storage)
	fmt.Fprintf(w, "Embedding model:\t%s\n", stats.EmbeddingModel)
	w.Flush()

	return nil
}
