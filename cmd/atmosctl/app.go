package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/client/api"
	"github.com/AntoDono/utmostatmos-app/internal/client/auth"
	"github.com/AntoDono/utmostatmos-app/internal/client/idp"
	"github.com/AntoDono/utmostatmos-app/internal/client/storage"
)

// cliApp wires the durable store, auth state machine, and API client for one
// command invocation.
type cliApp struct {
	store   *storage.SQLiteStore
	manager *auth.Manager
	client  *api.Client
	logger  *zap.Logger
}

func newApp(cmd *cobra.Command) (*cliApp, error) {
	ctx := cmd.Context()

	logger := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	connector, err := buildConnector(cmd, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	manager := auth.NewManager(connector, store, logger)
	if err := manager.Rehydrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("restore auth state: %w", err)
	}

	server, _ := cmd.Flags().GetString("server")
	client := api.New(server, api.TokenSourceFunc(manager.AccessToken))

	return &cliApp{store: store, manager: manager, client: client, logger: logger}, nil
}

func (a *cliApp) Close() {
	_ = a.store.Close()
	_ = a.logger.Sync()
}

func openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	dir := filepath.Join(configDir, "atmosctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return storage.OpenSQLite(ctx, filepath.Join(dir, "atmosctl.db"))
}

func buildConnector(cmd *cobra.Command, logger *zap.Logger) (idp.Connector, error) {
	clientID, _ := cmd.Flags().GetString("client-id")
	authURL, _ := cmd.Flags().GetString("auth-url")
	tokenURL, _ := cmd.Flags().GetString("token-url")

	// Guest browsing and the public endpoints work without OAuth settings.
	if clientID == "" || authURL == "" || tokenURL == "" {
		return unconfiguredConnector{}, nil
	}

	return idp.NewOAuthConnector(idp.OAuthConfig{
		ClientID:    clientID,
		AuthURL:     authURL,
		TokenURL:    tokenURL,
		Scopes:      []string{"openid", "profile", "email", "offline_access"},
		OpenBrowser: openBrowser,
	}, logger)
}

// unconfiguredConnector stands in when OAuth settings are absent.
type unconfiguredConnector struct{}

func (unconfiguredConnector) Authorize(context.Context) (idp.Credentials, error) {
	return idp.Credentials{}, fmt.Errorf("oauth is not configured: set --client-id, --auth-url, and --token-url")
}

func (unconfiguredConnector) Credentials(context.Context) (idp.Credentials, error) {
	return idp.Credentials{}, idp.ErrNoCredentials
}

func (unconfiguredConnector) ClearCredentials(context.Context) error { return nil }

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
