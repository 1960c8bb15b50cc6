package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ncetprep/educator-gate/internal/domain"
)

// RoleProfileRepo provides typed DynamoDB operations for the role-profiles table.
type RoleProfileRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRoleProfileRepo(client *dynamodb.Client, tableName string) *RoleProfileRepo {
	return &RoleProfileRepo{client: client, tableName: tableName}
}

func (r *RoleProfileRepo) Get(ctx context.Context, identityID string) (*domain.RoleProfile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity_id", identityID),
	})
	if err != nil {
		return nil, classify(err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("role profile not found: %w", domain.ErrNotFound)
	}
	var p domain.RoleProfile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RoleProfileRepo) Put(ctx context.Context, p *domain.RoleProfile) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal role profile: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return classify(err)
}

// Update patches the given fields only. created_at is never part of the
// update map, so first-creation time survives every subsequent upsert.
func (r *RoleProfileRepo) Update(ctx context.Context, identityID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("identity_id", identityID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return classify(err)
}
