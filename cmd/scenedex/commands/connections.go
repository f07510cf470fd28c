package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scenedex/scenedex/internal/searcher"
	"github.com/scenedex/scenedex/internal/storage"
)

var connectionsDepth int

// NewConnectionsCmd creates the connections command
func NewConnectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections <path>",
		Short: "Show files connected to a file",
		Long: `Show the files reachable from a file through the relationship graph,
grouped by direction and relationship ("uses_attaches_script",
"used_by_references", ...). The path is the project-relative path the
file was indexed under.

Examples:
  scenedex connections scenes/main.tscn
  scenedex connections --depth 3 scripts/player.gd`,
		Args: cobra.ExactArgs(1),
		RunE: runConnections,
	}

	cmd.Flags().IntVar(&connectionsDepth, "depth", searcher.DefaultMaxDepth, "Traversal depth (hops)")

	return cmd
}

func runConnections(cmd *cobra.Command, args []string) error {
	tenant, err := tenantFromFlags()
	if err != nil {
		return err
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	conns, err := svc.Connections(cmd.Context(), tenant, args[0], connectionsDepth)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s is not in the index (run 'scenedex index' first?)", args[0])
		}
		return fmt.Errorf("reading connections: %w", err)
	}

	if jsonOutput {
		jsonData, err := json.MarshalIndent(conns, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(conns) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s has no connections\n", args[0])
		return nil
	}

	labels := make([]string, 0, len(conns))
	for label := range conns {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", args[0])
	for _, label := range labels {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", label, strings.Join(conns[label], ", "))
	}

	return nil
}
