package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/headless-auth-relay/internal/domain"
)

// AuthSessionRepo stores the server side of in-flight authorization flows
// (PKCE verifier, state, nonce) keyed by the browser session id. Expired
// flows are reaped by the table TTL on expires_at.
type AuthSessionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAuthSessionRepo(client *dynamodb.Client, tableName string) *AuthSessionRepo {
	return &AuthSessionRepo{client: client, tableName: tableName}
}

func (r *AuthSessionRepo) Put(ctx context.Context, s *domain.AuthSession) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal auth session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AuthSessionRepo) Get(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("session_id", sessionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("auth session not found: %w", domain.ErrNotFound)
	}
	var s domain.AuthSession
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AuthSessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("session_id", sessionID),
	})
	return err
}
