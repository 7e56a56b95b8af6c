package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/rankbeam/citewatch/pkg/types"
)

// CreateRun stores a new immutable Run row under its target's partition.
func (s *Store) CreateRun(ctx context.Context, run types.Run) error {
	item, err := attributevalue.MarshalMap(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}
	item["PK"] = &ddbtypes.AttributeValueMemberS{Value: targetPK(run.TargetID)}
	item["SK"] = &ddbtypes.AttributeValueMemberS{Value: runSK(string(run.Platform), run.CreatedAt, run.RunID)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

// LatestRunSince returns the most recent Run for (target, platform) created
// at or after since, or nil when none qualifies. The window is half-open:
// a run created exactly at since counts.
func (s *Store) LatestRunSince(ctx context.Context, targetID string, platform types.Platform, since time.Time) (*types.Run, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk":     &ddbtypes.AttributeValueMemberS{Value: targetPK(targetID)},
			":prefix": &ddbtypes.AttributeValueMemberS{Value: runSKPrefix(string(platform))},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var run types.Run
	if err := attributevalue.UnmarshalMap(out.Items[0], &run); err != nil {
		return nil, fmt.Errorf("unmarshaling run: %w", err)
	}
	if run.CreatedAt.Before(since) {
		return nil, nil
	}
	return &run, nil
}

// ListRuns returns all runs for a target across all platforms and all time,
// oldest first.
func (s *Store) ListRuns(ctx context.Context, targetID string) ([]types.Run, error) {
	var runs []types.Run
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.tableName,
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":pk":     &ddbtypes.AttributeValueMemberS{Value: targetPK(targetID)},
				":prefix": &ddbtypes.AttributeValueMemberS{Value: prefixRun},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}

		for _, item := range out.Items {
			var run types.Run
			if err := attributevalue.UnmarshalMap(item, &run); err != nil {
				s.logger.Warn("skipping corrupt run item", "target", targetID, "error", err)
				continue
			}
			runs = append(runs, run)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return runs, nil
}
