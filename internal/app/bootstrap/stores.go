package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/videobooker-api/internal/catalog"
	appconfig "github.com/wolfman30/videobooker-api/internal/config"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// Integration store backends accepted by INTEGRATION_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
)

// ErrBackendUnavailable is returned when the selected backend has no client.
var ErrBackendUnavailable = errors.New("bootstrap: backend unavailable")

// BuildIntegrationStore selects the integration record store.
func BuildIntegrationStore(cfg *appconfig.Config, redisClient *redis.Client, dynamo *dynamodb.Client) (integrations.Store, error) {
	switch backend := strings.ToLower(strings.TrimSpace(cfg.IntegrationStore)); backend {
	case "", StoreMemory:
		return integrations.NewMemoryStore(), nil
	case StoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("%w: redis store needs REDIS_ADDR", ErrBackendUnavailable)
		}
		return integrations.NewRedisStore(redisClient, cfg.BookingTenant), nil
	case StoreDynamoDB:
		if dynamo == nil {
			return nil, fmt.Errorf("%w: dynamodb client not configured", ErrBackendUnavailable)
		}
		return integrations.NewDynamoStore(dynamo, cfg.IntegrationsTable, cfg.BookingTenant), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown integration store %q", backend)
	}
}

// BuildCatalogStore returns the Postgres store when a pool is available.
func BuildCatalogStore(pool *pgxpool.Pool) catalog.Store {
	if pool == nil {
		return catalog.NewMemoryStore()
	}
	return catalog.NewPostgresStore(pool)
}

// BuildMappingCache returns the Redis cache when a client is available.
func BuildMappingCache(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) mapping.Cache {
	if redisClient == nil {
		return mapping.NewMemoryCache(logger)
	}
	return mapping.NewRedisCache(redisClient, cfg.MappingTTL, logger)
}

// BuildEventPublisher returns the SQS publisher when a queue is configured.
func BuildEventPublisher(cfg *appconfig.Config, client *sqs.Client) integrations.EventPublisher {
	if client == nil || strings.TrimSpace(cfg.IntegrationEventsQueueURL) == "" {
		return integrations.NopPublisher{}
	}
	return integrations.NewSQSPublisher(client, cfg.IntegrationEventsQueueURL)
}
