package cmd

import (
	"github.com/marcus/habitchain/internal/auth"
	"github.com/marcus/habitchain/internal/config"
	"github.com/marcus/habitchain/internal/credstore"
	"github.com/marcus/habitchain/internal/federated"
	"github.com/marcus/habitchain/internal/identity"
	"github.com/marcus/habitchain/internal/logging"
	"go.uber.org/zap"
)

// appEnv is everything a command needs to talk to the identity provider.
type appEnv struct {
	log    *zap.Logger
	store  *credstore.Store
	client *identity.Client
	google *federated.Google
	auth   *auth.Actions
}

// openEnv builds the logger, credential store, identity client and auth
// actions from c. open presents the Google consent URL; nil opens the
// browser without printing anything.
func openEnv(c config.Config, open func(url string) error) (*appEnv, error) {
	log, err := logging.New(c.Log.File, c.Log.Level)
	if err != nil {
		return nil, err
	}

	store, err := credstore.Open(c.Data.Dir)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	client := identity.New(identity.Options{
		Endpoint:      c.Identity.Endpoint,
		TokenEndpoint: c.Identity.TokenEndpoint,
		APIKey:        c.Identity.APIKey,
		Timeout:       c.Identity.Timeout,
		Store:         store,
		Logger:        log,
	})
	google := federated.NewGoogle(federated.GoogleOptions{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		Open:         open,
		Logger:       log,
	})
	if c.Identity.APIKey == "" {
		log.Warn("identity.api_key is not set; sign-in requests will be rejected")
	}

	return &appEnv{
		log:    log,
		store:  store,
		client: client,
		google: google,
		auth: auth.New(client, auth.Options{
			Google:  google,
			Journal: store,
			Logger:  log,
		}),
	}, nil
}

// Close releases the client, the database and the log file.
func (e *appEnv) Close() {
	e.client.Close()
	if err := e.store.Close(); err != nil {
		e.log.Warn("close credential store", zap.Error(err))
	}
	_ = e.log.Sync()
}
