package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewClearCmd creates the clear command
func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all indexed data for the tenant",
		Long: `Delete every chunk, embedding, and graph row stored for the tenant.
Other tenants sharing the same database are untouched.`,
		Args: cobra.NoArgs,
		RunE: runClear,
	}

	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	tenant, err := tenantFromFlags()
	if err != nil {
		return err
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Clear(cmd.Context(), tenant); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Index cleared for %s/%s\n", tenant.UserID, tenant.ProjectID)
	return nil
}
