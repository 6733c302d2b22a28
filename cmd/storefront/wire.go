package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/core/service"
	"github.com/superdelivery/storefront/internal/infrastructure/apiclient"
	"github.com/superdelivery/storefront/internal/infrastructure/config"
	"github.com/superdelivery/storefront/internal/infrastructure/db/bolt"
	"github.com/superdelivery/storefront/internal/infrastructure/db/memory"
	"github.com/superdelivery/storefront/internal/infrastructure/db/mongo"
	"github.com/superdelivery/storefront/internal/infrastructure/db/redis"
	"github.com/superdelivery/storefront/internal/infrastructure/notify"
	"github.com/superdelivery/storefront/internal/infrastructure/queue"
	"github.com/superdelivery/storefront/pkg/logger"
)

const noticeCapacity = 50

// app holds every long-lived component and the resources to release on exit.
type app struct {
	sessions *service.SessionService
	cart     *service.CartService
	catalog  ports.CatalogService
	checkout ports.CheckoutService
	tracker  *service.OrderTracker
	notices  *notify.Queue
	queue    *queue.Dispatcher
	history  ports.ObservationRepository

	redis       *goredis.Client
	mongoClient *gomongo.Client
	mongoDB     *gomongo.Database
	closers     []func() error
}

func build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close(log)
		}
	}()

	if cfg.Redis.Addr != "" {
		a.redis, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.redis.Close)
	}

	if cfg.Mongo.URI != "" {
		a.mongoClient, a.mongoDB, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return a.mongoClient.Disconnect(context.Background()) })
	}

	store, err := a.tokenStore(cfg)
	if err != nil {
		return nil, err
	}

	client, err := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger.Component(log, "apiclient")),
	)
	if err != nil {
		return nil, err
	}

	a.notices = notify.NewQueue(noticeCapacity, log)
	a.sessions = service.NewSessionService(client, store, nil, log)
	a.cart = service.NewCartService(client, a.sessions, log)
	a.sessions.OnChange(a.cart.OnSessionChange)
	a.catalog = service.NewCatalogService(client, a.notices, nil, log)
	a.checkout = service.NewCheckoutService(client, a.sessions, a.cart, log)

	var recorder ports.ObservationRecorder
	if a.mongoDB != nil {
		var dedup ports.DedupChecker
		if a.redis != nil {
			dedup = redis.NewDedupChecker(a.redis)
		}
		repo := mongo.NewObservationRepository(a.mongoDB)
		a.history = repo
		a.queue = queue.NewDispatcher(0, service.NewObservationService(repo, dedup, 0, log), log)
		recorder = a.queue
	} else {
		log.Info().Msg("MONGO_URI not set, order status observations are not recorded")
	}

	a.tracker = service.NewOrderTracker(client, a.sessions, a.notices, recorder, nil, service.TrackerConfig{
		OrderInterval:  cfg.Tracking.OrderInterval,
		ActiveInterval: cfg.Tracking.ActiveInterval,
	}, log)

	return a, nil
}

func (a *app) tokenStore(cfg *config.Config) (ports.TokenStore, error) {
	switch cfg.Store.Backend {
	case config.TokenStoreRedis:
		return redis.NewTokenStore(a.redis), nil
	case config.TokenStoreMemory:
		return memory.NewTokenStore(), nil
	case config.TokenStoreBolt:
		s, err := bolt.Open(cfg.Store.BoltPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Store.Backend)
	}
}

func (a *app) close(log zerolog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
