package repository

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/solarcare/inverter-service/internal/persistence"
)

func toItem(key persistence.Key, v any) (persistence.Item, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", key, err)
	}
	item[persistence.AttrPK] = &types.AttributeValueMemberS{Value: key.PK}
	item[persistence.AttrSK] = &types.AttributeValueMemberS{Value: key.SK}
	return item, nil
}

func fromItem(item persistence.Item, out any) error {
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

func markerItem(key persistence.Key, attrs map[string]string) persistence.Item {
	item := persistence.Item{
		persistence.AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		persistence.AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
	for name, value := range attrs {
		item[name] = &types.AttributeValueMemberS{Value: value}
	}
	return item
}

// setIf adds a non-nil pointer value to the update set.
func setIf[T any](set map[string]any, name string, value *T) {
	if value != nil {
		set[name] = *value
	}
}
