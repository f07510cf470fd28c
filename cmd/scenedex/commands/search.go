package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scenedex/scenedex/internal/searcher"
	"github.com/scenedex/scenedex/pkg/types"
)

var (
	searchLimit    int
	searchGraph    bool
	searchCategory string
	searchNoCache  bool
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed content by meaning",
		Long: `Search the tenant's indexed chunks by semantic similarity. With
--graph, each hit is enriched with its connected files and the
project's most central files are appended.

Examples:
  scenedex search "player movement input"
  scenedex search --graph --limit 5 "enemy spawn logic"
  scenedex search --category script "signal connections"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", searcher.DefaultLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&searchGraph, "graph", false, "Include graph context in results")
	cmd.Flags().StringVar(&searchCategory, "category", "", "Restrict to a file category (scene, script, resource, config, doc)")
	cmd.Flags().BoolVar(&searchNoCache, "no-cache", false, "Bypass the query cache")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	tenant, err := tenantFromFlags()
	if err != nil {
		return err
	}

	if !types.ValidCategoryFilter(searchCategory) {
		return fmt.Errorf("unknown category %q (valid: scene, script, resource, config, doc, text)", searchCategory)
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	resp, err := svc.Search(cmd.Context(), tenant, searcher.SearchRequest{
		Query:     args[0],
		Limit:     searchLimit,
		WithGraph: searchGraph,
		Category:  searchCategory,
		UseCache:  !searchNoCache,
	})
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if jsonOutput {
		jsonData, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(resp.Results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No results for %q\n", resp.Query)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tSCORE\tFILE\tLINES\tCONTENT\n")
	fmt.Fprintf(w, "----\t-----\t----\t-----\t-------\n")
	for _, r := range resp.Results {
		snippet := strings.Join(strings.Fields(r.Content), " ")
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%d-%d\t%s\n",
			r.Rank,
			r.Similarity,
			r.FilePath,
			r.StartLine,
			r.EndLine,
			truncate(snippet, 60))
	}
	w.Flush()

	if searchGraph {
		printGraphContext(cmd, resp)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d result(s) in %s\n",
		len(resp.Results), resp.Elapsed.Round(time.Millisecond))

	return nil
}

func printGraphContext(cmd *cobra.Command, resp *types.SearchResponse) {
	if len(resp.Connections) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nConnections:\n")
		for _, r := range resp.Results {
			conns, ok := resp.Connections[r.FilePath]
			if !ok || len(conns) == 0 {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", r.FilePath)
			for label, targets := range conns {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s: %s\n", label, strings.Join(targets, ", "))
			}
		}
	}

	if len(resp.CentralFiles) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nCentral files:\n")
		for _, cf := range resp.CentralFiles {
			fmt.Fprintf(cmd.OutOrStdout(), "  %.4f  %s\n", cf.Score, cf.FilePath)
		}
	}
}
