package bootstrap

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/videobooker-api/internal/catalog"
	appconfig "github.com/wolfman30/videobooker-api/internal/config"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBuildIntegrationStore(t *testing.T) {
	rdb := newRedis(t)
	dyn := dynamodb.New(dynamodb.Options{Region: "us-east-1"})

	tests := []struct {
		name    string
		backend string
		redis   *redis.Client
		dynamo  *dynamodb.Client
		want    any
		wantErr error
	}{
		{name: "default memory", backend: "", want: &integrations.MemoryStore{}},
		{name: "memory", backend: "MEMORY", want: &integrations.MemoryStore{}},
		{name: "redis", backend: "redis", redis: rdb, want: &integrations.RedisStore{}},
		{name: "redis without client", backend: "redis", wantErr: ErrBackendUnavailable},
		{name: "dynamodb", backend: "dynamodb", dynamo: dyn, want: &integrations.DynamoStore{}},
		{name: "dynamodb without client", backend: "dynamodb", wantErr: ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &appconfig.Config{IntegrationStore: tt.backend, IntegrationsTable: "integrations", BookingTenant: "videobooker"}
			store, err := BuildIntegrationStore(cfg, tt.redis, tt.dynamo)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestBuildIntegrationStoreUnknownBackend(t *testing.T) {
	_, err := BuildIntegrationStore(&appconfig.Config{IntegrationStore: "etcd"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}

func TestBuildCatalogStoreFallsBackToMemory(t *testing.T) {
	assert.IsType(t, &catalog.MemoryStore{}, BuildCatalogStore(nil))
}

func TestBuildMappingCache(t *testing.T) {
	cfg := &appconfig.Config{MappingTTL: time.Hour}
	assert.IsType(t, &mapping.MemoryCache{}, BuildMappingCache(cfg, nil, logging.Discard()))
	assert.IsType(t, &mapping.RedisCache{}, BuildMappingCache(cfg, newRedis(t), logging.Discard()))
}

func TestBuildEventPublisher(t *testing.T) {
	client := sqs.New(sqs.Options{Region: "us-east-1", BaseEndpoint: aws.String("http://localhost:4566")})

	assert.IsType(t, integrations.NopPublisher{}, BuildEventPublisher(&appconfig.Config{}, client))
	assert.IsType(t, integrations.NopPublisher{}, BuildEventPublisher(&appconfig.Config{IntegrationEventsQueueURL: "http://q"}, nil))
	assert.IsType(t, &integrations.SQSPublisher{}, BuildEventPublisher(&appconfig.Config{IntegrationEventsQueueURL: "http://q"}, client))
}
