package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-mfe-bridge/apiclient"
	"github.com/jrsteele09/go-mfe-bridge/bridge"
	"github.com/jrsteele09/go-mfe-bridge/credentials"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/hostenv"
	"github.com/jrsteele09/go-mfe-bridge/internal/config"
	"github.com/jrsteele09/go-mfe-bridge/server"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/clientcredentials"
)

// app is the dev host: a publisher standing in for the host application, the
// bridge consumer reading from it and the HTTP surface over both.
type app struct {
	publisher *hostenv.Publisher
	consumer  *bridge.Consumer
	server    *server.Server
}

func newApp(c config.Config) (*app, error) {
	seed := hostdata.RawRecord{}
	if path := c.GetHostDataFile(); path != "" {
		loaded, err := hostenv.LoadSeed(path)
		if err != nil {
			return nil, fmt.Errorf("[newApp] failed to load host data seed: %w", err)
		}
		seed = loaded
		log.Info().Str("file", path).Int("keys", len(seed)).Msg("Loaded host data seed")
	}

	publisher := hostenv.NewPublisher(seed)
	scope := hostenv.NewScope()
	publisher.Install(scope)

	if raw := c.GetHostPageURL(); raw != "" {
		location, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("[newApp] invalid host page url: %w", err)
		}
		scope.SetLocation(location)
	}

	if refresher := credentialRefresher(c); refresher != nil {
		scope.SetCredentialRefresher(refresher)
		log.Info().Str("token_url", c.GetOAuthTokenURL()).Msg("Credential refresh enabled")
	}

	consumer, err := bridge.New(scope, bridge.WithPollInterval(c.GetPollInterval()))
	if err != nil {
		return nil, err
	}
	if err := consumer.Initialize(); err != nil {
		return nil, fmt.Errorf("[newApp] failed to initialise bridge: %w", err)
	}

	var resolverOptions []credentials.Option
	if path := c.GetCredentialStorePath(); path != "" {
		store, err := credentials.NewFileStore(path, c.GetCredentialStoreSecret())
		if err != nil {
			consumer.Teardown()
			return nil, err
		}
		resolverOptions = append(resolverOptions, credentials.WithStore(store))
	}
	resolver, err := credentials.NewResolver(scope, consumer, resolverOptions...)
	if err != nil {
		consumer.Teardown()
		return nil, err
	}

	client, err := apiclient.New(resolver, apiclient.WithTimeout(c.GetHTTPTimeout()))
	if err != nil {
		consumer.Teardown()
		return nil, err
	}

	srv, err := server.New(c,
		server.WithPublisher(publisher),
		server.WithBridge(consumer),
		server.WithAPIClient(client),
		server.WithHTTPClient(&http.Client{Timeout: c.GetHTTPTimeout()}),
	)
	if err != nil {
		consumer.Teardown()
		return nil, err
	}

	return &app{publisher: publisher, consumer: consumer, server: srv}, nil
}

// credentialRefresher returns nil unless an OAuth client is configured.
func credentialRefresher(c config.APIConfig) hostenv.RefreshFunc {
	if c.GetOAuthTokenURL() == "" || c.GetOAuthClientID() == "" {
		return nil
	}
	cfg := &clientcredentials.Config{
		ClientID:     c.GetOAuthClientID(),
		ClientSecret: c.GetOAuthClientSecret(),
		TokenURL:     c.GetOAuthTokenURL(),
	}
	return hostenv.ClientCredentialsRefresher(cfg, c.GetAPIKey(), c.GetBFFBaseURL())
}

func (a *app) Close() {
	a.consumer.Teardown()
}
