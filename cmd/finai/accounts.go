package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/cli"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage linked accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List linked connections",
		RunE:  runAccountsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Refresh balances for every linked connection",
		RunE:  runAccountsSync,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [connection-id]",
		Short: "Show balances for one connection, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAccountsShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unlink <connection-id>",
		Short: "Remove a linked connection",
		Args:  cobra.ExactArgs(1),
		RunE:  runAccountsUnlink,
	})

	return cmd
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	stack, err := newAccountStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	conns, err := stack.service.Connections(ctx)
	if err != nil {
		return err
	}
	if len(conns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No linked accounts. Run 'finai auth plaid' or 'finai auth simplefin' to add one."))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROVIDER\tINSTITUTION\tLINKED\tLAST SYNC")
	for _, c := range conns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Provider, c.InstitutionName,
			c.CreatedAt.Format("2006-01-02"), lastSync(c))
	}
	return w.Flush()
}

func lastSync(c model.Connection) string {
	if c.LastSyncedAt == nil {
		return "never"
	}
	return c.LastSyncedAt.Local().Format(time.DateTime)
}

func runAccountsSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	stack, err := newAccountStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	conns, err := stack.service.Connections(ctx)
	if err != nil {
		return err
	}
	if len(conns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing to sync."))
		return nil
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx = interrupts.HandleInterrupts(ctx, "Sync", "Balances already fetched were saved.")

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(conns), "Syncing balances...")
	refreshed, err := stack.service.RefreshAll(ctx, func(c model.Connection, err error) {
		if err != nil {
			slog.Debug("Sync failed", "connection", c.ID, "error", err)
		}
		_ = bar.Add(1)
	})

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Refreshed %d of %d connections", refreshed, len(conns))))
	if err != nil {
		return fmt.Errorf("some connections failed: %w", err)
	}
	return nil
}

func runAccountsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	stack, err := newAccountStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	var snap model.AccountsSnapshot
	if len(args) == 1 {
		snap, err = stack.service.Snapshot(ctx, args[0])
	} else {
		snap, err = stack.service.SnapshotAll(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(
		fmt.Sprintf("%s Balances (%s, %s)", cli.BankIcon, snap.Source, snap.CapturedAt.Local().Format(time.DateTime)),
		cli.AccountsTable(snap)))
	return nil
}

func runAccountsUnlink(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	stack, err := newAccountStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	if err := stack.service.Unlink(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Unlinked "+args[0]))
	return nil
}
