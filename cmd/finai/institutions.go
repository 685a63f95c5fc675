package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/config"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/plaid"
)

func institutionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "institutions",
		Short: "Search supported banks",
		Long: `Search for banks supported by Plaid and check their capabilities.

Banks that don't require OAuth can be linked immediately, without configuring
redirect URIs in the Plaid dashboard.`,
	}

	cmd.AddCommand(institutionsSearchCmd())

	return cmd
}

func institutionsSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for banks by name",
		Long: `Search for banks by name and see their authentication requirements.

Examples:
  finai institutions search chase
  finai institutions search "bank of america"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInstitutionsSearch,
	}

	cmd.Flags().String("env", "", "Plaid environment (sandbox/production)")
	cmd.Flags().Int("limit", 10, "Maximum number of results to show")

	return cmd
}

func runInstitutionsSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	if env, _ := cmd.Flags().GetString("env"); env != "" {
		viper.Set("plaid.environment", env)
	}
	cfg, err := config.LoadPlaidConfig()
	if err != nil {
		return err
	}
	client, err := plaid.NewClient(*cfg)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	institutions, err := client.SearchInstitutions(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search institutions: %w", err)
	}
	return printInstitutions(cmd, query, institutions)
}

func printInstitutions(cmd *cobra.Command, query string, institutions []plaid.Institution) error {
	out := cmd.OutOrStdout()
	if len(institutions) == 0 {
		fmt.Fprintf(out, "No banks found matching %q\n", query)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tOAUTH\tTRANSACTIONS")
	for _, inst := range institutions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inst.Name, inst.ID, yesNo(inst.OAuth), yesNo(inst.SupportsTransactions))
	}
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
