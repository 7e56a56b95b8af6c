package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/pkg/types"
)

// PutTarget registers or updates a monitored target. Targets carry GSI1 keys
// so the daily batch can enumerate them without a table scan.
func (s *Store) PutTarget(ctx context.Context, target types.Target) error {
	item, err := attributevalue.MarshalMap(target)
	if err != nil {
		return fmt.Errorf("marshaling target: %w", err)
	}
	item["PK"] = &ddbtypes.AttributeValueMemberS{Value: targetPK(target.ID)}
	item["SK"] = &ddbtypes.AttributeValueMemberS{Value: skConfig}
	item["GSI1PK"] = &ddbtypes.AttributeValueMemberS{Value: gsiTargets}
	item["GSI1SK"] = &ddbtypes.AttributeValueMemberS{Value: target.ID}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting target: %w", err)
	}
	return nil
}

// GetTarget retrieves a target by id.
func (s *Store) GetTarget(ctx context.Context, id string) (*types.Target, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: targetPK(id)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: skConfig},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting target: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("target %q: %w", id, provider.ErrNotFound)
	}

	var target types.Target
	if err := attributevalue.UnmarshalMap(out.Item, &target); err != nil {
		return nil, fmt.Errorf("unmarshaling target: %w", err)
	}
	return &target, nil
}

// ListTargets returns all registered targets, ordered by id.
func (s *Store) ListTargets(ctx context.Context) ([]types.Target, error) {
	var targets []types.Target
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.tableName,
			IndexName:              aws.String("GSI1"),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":pk": &ddbtypes.AttributeValueMemberS{Value: gsiTargets},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("listing targets: %w", err)
		}

		for _, item := range out.Items {
			var target types.Target
			if err := attributevalue.UnmarshalMap(item, &target); err != nil {
				s.logger.Warn("skipping corrupt target item", "error", err)
				continue
			}
			targets = append(targets, target)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return targets, nil
}
