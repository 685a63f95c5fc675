package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/config"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/plaid"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/provider"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/simplefin"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/storage"
)

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath(viper.GetString("database.path")))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// optionalPlaid returns a Plaid client when credentials are configured. Missing
// credentials are not an error; anything else is.
func optionalPlaid() (*plaid.Client, error) {
	cfg, err := config.LoadPlaidConfig()
	if errors.Is(err, common.ErrMissingConfig) {
		slog.Debug("Plaid not configured", "reason", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return plaid.NewClient(*cfg)
}

// accountStack bundles what commands need to read linked balances.
type accountStack struct {
	store    *storage.SQLiteStorage
	cache    provider.Cache
	service  *provider.Service
	plaid    *plaid.Client
	simplefn *simplefin.Client
}

func (s *accountStack) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	_ = s.store.Close()
}

func newAccountStack(ctx context.Context) (*accountStack, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	cache, err := provider.NewCache(*cacheCfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	plaidClient, err := optionalPlaid()
	if err != nil {
		_ = cache.Close()
		_ = store.Close()
		return nil, err
	}

	stack := &accountStack{
		store:    store,
		cache:    cache,
		service:  provider.NewService(store, cache, cacheCfg.TTL),
		plaid:    plaidClient,
		simplefn: simplefin.NewClient(),
	}
	stack.service.Register(model.ProviderSimpleFIN, stack.simplefn)
	if plaidClient != nil {
		stack.service.Register(model.ProviderPlaid, plaidClient)
	}
	return stack, nil
}

// loadProfileFile reads a JSON or YAML profile. The format follows the extension.
func loadProfileFile(path string) (planner.RawProfile, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	raw := planner.RawProfile{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("profile %s: unsupported format, use .json or .yaml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return raw, nil
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
