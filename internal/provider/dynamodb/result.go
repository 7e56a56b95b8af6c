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

// PutResult stores a Result row. The conditional put enforces at most one
// Result per (run, query, repetition); a duplicate write returns
// provider.ErrResultExists.
func (s *Store) PutResult(ctx context.Context, result types.Result) error {
	item, err := attributevalue.MarshalMap(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	item["PK"] = &ddbtypes.AttributeValueMemberS{Value: runPK(result.RunID)}
	item["SK"] = &ddbtypes.AttributeValueMemberS{Value: resultSK(result.Query, result.Repetition)}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return provider.ErrResultExists
		}
		return fmt.Errorf("putting result: %w", err)
	}
	return nil
}

// HasResult reports whether a Result exists for (run, query, repetition).
func (s *Store) HasResult(ctx context.Context, runID, query string, repetition int) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.tableName,
		ConsistentRead: aws.Bool(true),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: runPK(runID)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: resultSK(query, repetition)},
		},
	})
	if err != nil {
		return false, fmt.Errorf("checking result: %w", err)
	}
	return out.Item != nil, nil
}

// ListResults returns all results for a run, sorted by (query, repetition).
func (s *Store) ListResults(ctx context.Context, runID string) ([]types.Result, error) {
	var results []types.Result
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.tableName,
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":pk":     &ddbtypes.AttributeValueMemberS{Value: runPK(runID)},
				":prefix": &ddbtypes.AttributeValueMemberS{Value: prefixResult},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("listing results: %w", err)
		}

		for _, item := range out.Items {
			var result types.Result
			if err := attributevalue.UnmarshalMap(item, &result); err != nil {
				s.logger.Warn("skipping corrupt result item", "run", runID, "error", err)
				continue
			}
			results = append(results, result)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return results, nil
}
