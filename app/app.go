// Package app assembles the movie usecases of one client session from configuration.
package app

import (
	"context"
	"strconv"

	"moviehub/auth"
	"moviehub/dynamodb"
	"moviehub/favorite"
	"moviehub/filestore"
	"moviehub/graphql"
	"moviehub/movie"
	"moviehub/pkg/config"
	"moviehub/pkg/kv"
	"moviehub/pkg/logger"
	"moviehub/postgres"
	"moviehub/rest"

	"go.uber.org/zap"
)

// Session is everything one user of the UI layer works with.
type Session struct {
	ID        string
	Auth      auth.Service
	Favorites favorite.Service
	Movies    movie.Service
}

// Factory builds sessions that share storage and API transports.
type Factory struct {
	variant string
	storage kv.Store
	api     *rest.Client
	graph   *rest.Client
	log     *zap.SugaredLogger
}

func NewFactory(cfg *config.Config, storage kv.Store, log *zap.SugaredLogger) *Factory {
	if log == nil {
		log = logger.NOOPLogger
	}
	opts := []rest.Option{
		rest.WithRetryAttempts(cfg.API.RetryAttempts),
		rest.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
		rest.WithLogger(log),
	}
	return &Factory{
		variant: cfg.StoreVariant,
		storage: storage,
		api:     rest.New(cfg.API.BaseURL, cfg.APITimeout(), opts...),
		graph:   rest.New(cfg.API.GraphQLURL, cfg.APITimeout(), opts...),
		log:     log,
	}
}

// New builds the session id. Its storage keys are namespaced by id; an
// empty id uses the keys unprefixed.
//
// The REST variant reads from the REST API, falls back to GraphQL for
// browsing and keeps favorites on the server. The GraphQL variant reads
// from GraphQL only and keeps favorites on the client.
func (f *Factory) New(ctx context.Context, id string) *Session {
	log := f.log
	if id != "" {
		log = log.With("session_id", id)
	}
	storage := kv.WithPrefix(f.storage, id)

	sessions := auth.NewSessionStore(ctx, storage, log)
	api := f.api.WithAuth(sessions, sessions.Clear)
	graph := graphql.New(f.graph.WithAuth(sessions, sessions.Clear))

	var (
		gateway movie.Gateway
		remote  favorite.Remote
		opts    = []movie.Option{movie.WithLogger(log)}
	)
	if f.variant == config.VariantGraphQL {
		gateway = graph
		opts = append(opts, movie.WithEmptyQuery(movie.EmptyQueryList))
	} else {
		gateway = api
		remote = api
		opts = append(opts, movie.WithFallback(graph), movie.WithEmptyQuery(movie.EmptyQueryClear))
	}

	favorites := favorite.NewUsecase(favorite.NewLocalStore(storage, log), remote, sessions)
	opts = append(opts, movie.WithFavorites(favorites))

	return &Session{
		ID:        id,
		Auth:      auth.NewUsecase(api, sessions, log),
		Favorites: favorites,
		Movies:    movie.NewController(gateway, opts...),
	}
}

// OpenStorage connects the configured storage driver. The returned close
// function releases driver resources and is never nil.
func OpenStorage(ctx context.Context, cfg *config.Config) (kv.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.NewConnection(postgres.Options{
			DBName:   cfg.DB.Name,
			DBUser:   cfg.DB.User,
			Password: cfg.DB.Pass,
			Host:     cfg.DB.Host,
			Port:     strconv.Itoa(cfg.DB.Port),
			SSLMode:  cfg.DB.EnableSSL,
		})
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, err
		}
		return postgres.NewKVStore(db), sqlDB.Close, nil

	case config.StorageDynamoDB:
		store, err := dynamodb.Open(ctx, dynamodb.Options{
			Region:       cfg.DynamoDB.Region,
			Endpoint:     cfg.DynamoDB.Endpoint,
			AccessKey:    cfg.DynamoDB.AccessKey,
			SecretKey:    cfg.DynamoDB.SecretKey,
			SessionToken: cfg.DynamoDB.SessionToken,
			Table:        cfg.DynamoDB.KVTable,
		})
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}

	store, err := filestore.NewDisk(cfg.Storage.Dir)
	if err != nil {
		return nil, noop, err
	}
	return store, noop, nil
}
