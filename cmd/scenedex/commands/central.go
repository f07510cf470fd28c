package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scenedex/scenedex/internal/searcher"
)

var centralTop int

// NewCentralCmd creates the central command
func NewCentralCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "central",
		Short: "Rank files by graph centrality",
		Long: `Rank the tenant's files by blended centrality: how connected a file
is, how often it is depended on, and how much traffic flows through
it. High scores mark the load-bearing files of the project.

Examples:
  scenedex central
  scenedex central --top 20`,
		Args: cobra.NoArgs,
		RunE: runCentral,
	}

	cmd.Flags().IntVar(&centralTop, "top", searcher.DefaultCentralK, "Number of files to show")

	return cmd
}

func runCentral(cmd *cobra.Command, args []string) error {
	tenant, err := tenantFromFlags()
	if err != nil {
		return err
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	central, err := svc.CentralFiles(cmd.Context(), tenant, centralTop)
	if err != nil {
		return fmt.Errorf("ranking files: %w", err)
	}

	if jsonOutput {
		jsonData, err := json.MarshalIndent(central, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(central) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No indexed files\n")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tFILE\n")
	fmt.Fprintf(w, "-----\t----\n")
	for _, cf := range central {
		fmt.Fprintf(w, "%.4f\t%s\n", cf.Score, cf.FilePath)
	}
	w.Flush()

	return nil
}
