package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/cli"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/config"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/stocks"
)

func stocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stocks",
		Short: "Look up stocks and headline sentiment",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search ticker symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runStocksSearch,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "sentiment <symbol>",
		Short: "Score recent headlines for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  runStocksSentiment,
	})

	return cmd
}

func newStocksClient() (*stocks.Client, error) {
	cfg, err := config.LoadStocksConfig()
	if err != nil {
		return nil, err
	}
	return stocks.NewClient(*cfg)
}

func runStocksSearch(cmd *cobra.Command, args []string) error {
	client, err := newStocksClient()
	if err != nil {
		return err
	}
	matches, err := client.Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tTYPE\tREGION\tMATCH")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n", m.Symbol, m.Name, m.Type, m.Region, m.MatchScore)
	}
	return w.Flush()
}

func runStocksSentiment(cmd *cobra.Command, args []string) error {
	client, err := newStocksClient()
	if err != nil {
		return err
	}
	s, err := client.Sentiment(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	style := cli.InfoStyle
	switch s.Label {
	case stocks.Bullish:
		style = cli.SuccessStyle
	case stocks.Bearish:
		style = cli.ErrorStyle
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s (score %.2f, %d positive / %d negative)\n",
		cli.BoldStyle.Render(s.Symbol), style.Render(string(s.Label)), s.Score, s.Positive, s.Negative)
	for _, h := range s.Headlines {
		fmt.Fprintf(out, "  • %s\n", h.Title)
	}
	if chart, err := client.ChartURL(s.Symbol); err == nil {
		fmt.Fprintln(out, cli.SubtleStyle.Render("Chart: "+chart))
	}
	return nil
}
