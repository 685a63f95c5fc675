package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/certs"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/config"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/provider"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/server"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/stocks"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planning HTTP API",
		Long: `Serve the planner, account linking and stock lookups over HTTP.

Linked balances are refreshed in the background on the refresh.schedule cron
expression (default hourly). Plaid and stock endpoints answer 503 until their
credentials are configured.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080 or $PORT)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().Bool("no-refresh", false, "disable background balance refresh")

	_ = viper.BindPFlag("server.address", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	stack, err := newAccountStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	deps := server.Deps{
		Accounts: stack.service,
		Store:    stack.store,
		Transactions: map[model.ProviderKind]server.TransactionSource{
			model.ProviderSimpleFIN: stack.simplefn,
		},
		Certs: certs.NewFileManager(cfg.CertDir),
	}
	if stack.plaid != nil {
		deps.Plaid = stack.plaid
		deps.Transactions[model.ProviderPlaid] = stack.plaid
	} else {
		slog.Warn("Plaid credentials not configured; link endpoints are disabled")
	}

	stocksCfg, err := config.LoadStocksConfig()
	switch {
	case errors.Is(err, common.ErrMissingConfig):
		slog.Warn("Stock API key not configured; stock endpoints are disabled")
	case err != nil:
		return err
	default:
		client, err := stocks.NewClient(*stocksCfg)
		if err != nil {
			return err
		}
		deps.Stocks = client
	}

	srv, err := server.New(*cfg, deps)
	if err != nil {
		return err
	}

	if noRefresh, _ := cmd.Flags().GetBool("no-refresh"); !noRefresh {
		refresher, err := provider.NewRefresher(stack.service, config.RefreshSchedule())
		if err != nil {
			return err
		}
		refresher.Start()
		slog.Info("Background refresh scheduled", "next", refresher.Next().Format(time.RFC3339))
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			refresher.Stop(stopCtx)
		}()
	}

	slog.Info("Starting FinAI API", "address", cfg.Address, "tls", cfg.TLS, "version", version)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
