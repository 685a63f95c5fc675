package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/certs"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/cli"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/config"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/plaid"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/service"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Link bank accounts",
		Long:  `Link bank accounts through Plaid or a SimpleFIN bridge.`,
	}

	cmd.AddCommand(authPlaidCmd())
	cmd.AddCommand(authSimpleFINCmd())

	return cmd
}

func authPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Connect bank accounts via Plaid",
		Long: `Connect your bank accounts using Plaid Link.

This command will:
1. Start a local web server
2. Open Plaid Link in your browser
3. Save the connection once you finish linking

Production links are served over HTTPS with a self-signed certificate, so
expect a browser warning. You can run this multiple times to add more banks.`,
		RunE: runAuthPlaid,
	}

	cmd.Flags().String("env", "", "Plaid environment (sandbox/production)")
	cmd.Flags().String("addr", "localhost:8080", "address for the local Link page")
	cmd.Flags().Duration("timeout", 10*time.Minute, "how long to wait for the link to finish")

	return cmd
}

type linkResult struct {
	conn model.Connection
	err  error
}

var linkPage = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Connect Your Bank Account - FinAI</title>
    <script src="https://cdn.plaid.com/link/v2/stable/link-initialize.js"></script>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background-color: #f5f5f5; }
        .container { text-align: center; background: white; padding: 40px; border-radius: 8px;
                    box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        button { background-color: #4C9AFF; color: white; padding: 12px 24px;
                font-size: 16px; border: none; border-radius: 4px; cursor: pointer; }
        .error { color: #d32f2f; margin-top: 20px; }
        .success { color: #388e3c; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Connect Your Bank Account</h1>
        <p>Link an account so FinAI can plan with your real balances.</p>
        <button id="link-button">Connect Bank Account</button>
        <div id="message"></div>
    </div>
    <script>
    const show = (cls, text) => {
        document.getElementById('message').innerHTML = '<div class="' + cls + '"></div>';
        document.querySelector('#message div').textContent = text;
    };
    const linkHandler = Plaid.create({
        token: {{ . }},
        onSuccess: (public_token, metadata) => {
            show('success', 'Processing connection...');
            fetch('/exchange', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ publicToken: public_token, institution: metadata.institution })
            })
            .then(r => r.json())
            .then(data => data.success
                ? show('success', 'Account connected. You can close this window.')
                : show('error', data.error || 'Connection failed'))
            .catch(err => show('error', 'Network error: ' + err));
        },
        onExit: (err) => { if (err != null) show('error', 'Connection canceled or failed.'); }
    });
    document.getElementById('link-button').onclick = () => linkHandler.open();
    </script>
</body>
</html>`))

func runAuthPlaid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if env, _ := cmd.Flags().GetString("env"); env != "" {
		viper.Set("plaid.environment", env)
	}
	plaidCfg, err := config.LoadPlaidConfig()
	if err != nil {
		return fmt.Errorf("%w. Add plaid.client_id and plaid.secret to the config file or set PLAID_CLIENT_ID and PLAID_SECRET", err)
	}
	client, err := plaid.NewClient(*plaidCfg)
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	linkToken, err := client.CreateLinkToken(ctx, "finai-user")
	if err != nil {
		return fmt.Errorf("failed to create link token: %w", err)
	}

	results := make(chan linkResult, 1)
	router := linkRouter(ctx, linkToken, client, store, results)

	addr, _ := cmd.Flags().GetString("addr")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	scheme := "http"
	if plaidCfg.Environment == "production" {
		certDir := config.ExpandPath(config.DefaultDataDir() + "/certs")
		tlsCfg, err := certs.TLSConfig(certs.NewFileManager(certDir))
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to get/create certificate: %w", err)
		}
		srv.TLSConfig = tlsCfg
		scheme = "https"
		slog.Warn("Your browser will warn about the self-signed localhost certificate; proceed to localhost to continue")
	}

	go func() {
		var serveErr error
		if scheme == "https" {
			serveErr = srv.ServeTLS(ln, "", "")
		} else {
			serveErr = srv.Serve(ln)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			results <- linkResult{err: fmt.Errorf("link server: %w", serveErr)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("%s://%s", scheme, ln.Addr().String())
	slog.Info("Opening your browser to connect bank accounts...", "environment", plaidCfg.Environment)
	slog.Info("If the browser doesn't open, visit:", "url", url)
	openBrowser(url)

	timeout, _ := cmd.Flags().GetDuration("timeout")
	select {
	case res := <-results:
		if res.err != nil {
			return res.err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Linked %s (connection %s)", res.conn.InstitutionName, res.conn.ID)))
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s waiting for Plaid Link", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// linkRouter serves the Link page and stores the exchanged token.
func linkRouter(ctx context.Context, linkToken string, client plaid.Aggregator, store service.Storage, results chan<- linkResult) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := linkPage.Execute(w, linkToken); err != nil {
			slog.Warn("Failed to render link page", "error", err)
		}
	}).Methods(http.MethodGet)

	router.HandleFunc("/exchange", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PublicToken string `json:"publicToken"`
			Institution struct {
				ID   string `json:"institution_id"`
				Name string `json:"name"`
			} `json:"institution"`
		}
		reply := func(err error) {
			w.Header().Set("Content-Type", "application/json")
			body := map[string]any{"success": err == nil}
			if err != nil {
				body["error"] = err.Error()
			}
			_ = json.NewEncoder(w).Encode(body)
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicToken == "" {
			reply(errors.New("invalid request"))
			return
		}

		accessToken, _, err := client.ExchangePublicToken(ctx, req.PublicToken)
		if err != nil {
			slog.Error("Token exchange failed", "error", err)
			reply(errors.New("failed to exchange token"))
			return
		}

		conn := model.Connection{
			ID:              uuid.NewString(),
			Provider:        model.ProviderPlaid,
			AccessToken:     accessToken,
			InstitutionID:   req.Institution.ID,
			InstitutionName: req.Institution.Name,
		}
		if err := store.SaveConnection(ctx, &conn); err != nil {
			reply(errors.New("failed to save connection"))
			select {
			case results <- linkResult{err: fmt.Errorf("save connection: %w", err)}:
			default:
			}
			return
		}

		reply(nil)
		select {
		case results <- linkResult{conn: conn}:
		default:
		}
	}).Methods(http.MethodPost)

	return router
}

func authSimpleFINCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplefin",
		Short: "Connect a SimpleFIN bridge",
		Long: `Claim a SimpleFIN setup token and store the resulting access URL.

Get a setup token from your SimpleFIN bridge, then:
  finai auth simplefin --token <setup-token>`,
		RunE: runAuthSimpleFIN,
	}

	cmd.Flags().String("token", "", "SimpleFIN setup token")
	cmd.Flags().String("name", "SimpleFIN", "display name for the connection")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func runAuthSimpleFIN(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	token, _ := cmd.Flags().GetString("token")
	name, _ := cmd.Flags().GetString("name")

	stack, err := newAccountStack(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	accessURL, err := stack.simplefn.Claim(ctx, token)
	if err != nil {
		return fmt.Errorf("claim setup token: %w", err)
	}

	conn := model.Connection{
		ID:              uuid.NewString(),
		Provider:        model.ProviderSimpleFIN,
		AccessToken:     accessURL,
		InstitutionName: name,
	}
	if err := stack.store.SaveConnection(ctx, &conn); err != nil {
		return fmt.Errorf("save connection: %w", err)
	}

	snap, err := stack.service.Snapshot(ctx, conn.ID)
	if err != nil {
		slog.Warn("Linked, but the first balance fetch failed", "error", err)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), cli.AccountsTable(snap))
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Linked %s (connection %s)", name, conn.ID)))
	return nil
}
