package dynamo

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ncetprep/educator-gate/internal/domain"
)

// AccessCodeRepo provides typed DynamoDB operations for the access-codes table.
type AccessCodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAccessCodeRepo(client *dynamodb.Client, tableName string) *AccessCodeRepo {
	return &AccessCodeRepo{client: client, tableName: tableName}
}

func (r *AccessCodeRepo) Create(ctx context.Context, c *domain.AccessCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal access code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(code_id)"),
	})
	return classify(err)
}

func (r *AccessCodeRepo) Get(ctx context.Context, codeID string) (*domain.AccessCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("code_id", codeID),
	})
	if err != nil {
		return nil, classify(err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("access code not found: %w", domain.ErrNotFound)
	}
	var c domain.AccessCode
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActiveByDigest looks up a code by its digest via GSI, filtered to
// active=true in the same query. A correct digest on a deactivated code is
// indistinguishable from no match at all: one lookup, one shape.
func (r *AccessCodeRepo) GetActiveByDigest(ctx context.Context, digest string) (*domain.AccessCode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("code_digest-index"),
		KeyConditionExpression: aws.String("code_digest = :d"),
		FilterExpression:       aws.String("active = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: digest},
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("access code not found: %w", domain.ErrNotFound)
	}
	var c domain.AccessCode
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Bind claims the code for identityID. The write is guarded on the binding
// attribute still being absent, so two concurrent binders cannot both
// succeed: the loser gets domain.ErrConflict.
func (r *AccessCodeRepo) Bind(ctx context.Context, codeID, identityID, email string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("code_id", codeID),
		UpdateExpression:    aws.String("SET bound_identity_id = :id, bound_email = :em, last_used_at = :now, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(code_id) AND attribute_not_exists(bound_identity_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id":  &types.AttributeValueMemberS{Value: identityID},
			":em":  &types.AttributeValueMemberS{Value: email},
			":now": &types.AttributeValueMemberS{Value: now},
		},
	})
	return classify(err)
}

// TouchLastUsed records a successful repeat use by the bound identity.
func (r *AccessCodeRepo) TouchLastUsed(ctx context.Context, codeID string) error {
	return r.update(ctx, codeID, map[string]interface{}{
		"last_used_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// Deactivate retires the code. The record is kept for the audit trail.
func (r *AccessCodeRepo) Deactivate(ctx context.Context, codeID string) error {
	return r.update(ctx, codeID, map[string]interface{}{"active": false})
}

func (r *AccessCodeRepo) update(ctx context.Context, codeID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("code_id", codeID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(code_id)"),
	})
	return classify(err)
}

// ListPage returns a page of access codes for the admin view.
// cursor is a base64-encoded code_id used as ExclusiveStartKey.
func (r *AccessCodeRepo) ListPage(ctx context.Context, limit int32, cursor string) ([]domain.AccessCode, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		codeID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("code_id", codeID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", classify(err)
	}
	var codes []domain.AccessCode
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &codes); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["code_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return codes, nextCursor, nil
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
