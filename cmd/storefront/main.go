// cmd/storefront/main.go
package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/cart/application"
	"storefront/internal/service/cart/infrastructure"
	"storefront/internal/service/cart/infrastructure/adapter"
	"storefront/internal/service/cart/interfaces"
)

const (
	serviceName = "storefront"
	defaultPort = 8080
)

func main() {
	var (
		redisClient *redis.Client
		kafkaWriter *kafka.Writer
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        defaultPort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Config
			tracer := otel.Tracer(cfg.App.ServiceName)

			db, err := infrastructure.NewMysqlDB(
				cfg.Infra.Mysql.Addr,
				cfg.Infra.Mysql.User,
				cfg.Infra.Mysql.Password,
				cfg.Infra.Mysql.Database,
			)
			if err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
			}
			repo := infrastructure.NewGormCartRepository(db)

			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Infra.Redis.Addr})

			kafkaWriter = mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.ReservationTopic)
			events := adapter.NewReservationEventsKafkaAdapter(kafkaWriter)

			httpClient := httpclient.NewClient(tracer, appCtx.Nacos)
			inventory := adapter.NewInventoryHTTPAdapter(httpClient, cfg.Infra.Inventory.ServiceName)

			options := application.NewOptionsService(repo, inventory, tracer,
				application.WithOptionsCache(
					infrastructure.NewRedisOptionsCache(redisClient),
					time.Duration(cfg.App.OptionsCacheTTLSeconds)*time.Second,
				),
			)

			hub := interfaces.NewFeedbackHub(options.Detach)
			go hub.Run()

			coordinator := application.NewReservationCoordinator(repo, inventory, tracer,
				application.WithHoldTTL(time.Duration(cfg.App.HoldTTLSeconds)*time.Second),
				application.WithDefaultStore(cfg.App.DefaultStoreID),
				application.WithNotifier(hub),
				application.WithEventProducer(events),
			)

			cartSvc := application.NewCartService(repo, coordinator, options, tracer)

			handler := interfaces.NewCartHandler(cartSvc, coordinator, hub)
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if kafkaWriter != nil {
				if err := kafkaWriter.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("error closing kafka writer")
				}
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("error closing redis client")
				}
			}
		},
	})
}
