package integrations

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// dynamoItem is the table row. The partition key "pk" is "<tenant>#<provider>".
type dynamoItem struct {
	PK          string   `dynamodbav:"pk"`
	Tenant      string   `dynamodbav:"tenant"`
	Provider    string   `dynamodbav:"provider"`
	Status      string   `dynamodbav:"status"`
	ConnectedAt string   `dynamodbav:"connectedAt,omitempty"`
	Pages       []string `dynamodbav:"pages,omitempty"`
	SandboxMode bool     `dynamodbav:"sandboxMode"`
	EventTypes  []string `dynamodbav:"eventTypes,omitempty"`
	UpdatedAt   string   `dynamodbav:"updatedAt"`
}

// DynamoStore persists integration records in a DynamoDB table.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	tenant    string
}

// NewDynamoStore builds a store backed by the provided DynamoDB client. Items
// are keyed by tenant so several businesses can share one table.
func NewDynamoStore(client dynamoAPI, tableName, tenant string) *DynamoStore {
	if client == nil {
		panic("integrations: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("integrations: table name cannot be empty")
	}
	if tenant == "" {
		tenant = "default"
	}
	return &DynamoStore{client: client, tableName: tableName, tenant: tenant}
}

func (s *DynamoStore) key(provider Provider) string {
	return s.tenant + "#" + string(provider)
}

func (s *DynamoStore) Get(ctx context.Context, provider Provider) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: s.key(provider)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("integrations: dynamodb get: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("integrations: decode item: %w", err)
	}
	return item.record()
}

func (s *DynamoStore) Save(ctx context.Context, rec *Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(s.newItem(rec))
	if err != nil {
		return fmt.Errorf("integrations: marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("integrations: dynamodb put: %w", err)
	}
	return nil
}

func (s *DynamoStore) newItem(rec *Record) dynamoItem {
	item := dynamoItem{
		PK:        s.key(rec.Provider),
		Tenant:    s.tenant,
		Provider:  string(rec.Provider),
		Status:    string(rec.Status),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if rec.ConnectedAt != nil {
		item.ConnectedAt = rec.ConnectedAt.UTC().Format(time.RFC3339Nano)
	}
	if rec.Meta != nil {
		item.Pages = rec.Meta.Pages
		item.SandboxMode = rec.Meta.SandboxMode
	}
	if rec.Scheduling != nil {
		item.EventTypes = rec.Scheduling.EventTypes
	}
	return item
}

func (item dynamoItem) record() (*Record, error) {
	v := recordView{
		Provider:   Provider(item.Provider),
		Status:     Status(item.Status),
		Pages:      item.Pages,
		EventTypes: item.EventTypes,
	}
	if Provider(item.Provider) == ProviderMeta {
		sandbox := item.SandboxMode
		v.SandboxMode = &sandbox
	}
	if item.ConnectedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, item.ConnectedAt)
		if err != nil {
			return nil, fmt.Errorf("integrations: parse connectedAt: %w", err)
		}
		v.ConnectedAt = &t
	}
	return v.record()
}
