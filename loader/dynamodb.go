package loader

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/frozen/internal/hash"
	"github.com/hupe1980/frozen/record"
)

// DynamoDBSource loads a table by scanning a DynamoDB table.
//
// DynamoDB items carry no field order, so attributes are sorted by name.
// Scan order is not stable either; rows are sorted by the key field.
type DynamoDBSource struct {
	client         dynamodb.ScanAPIClient
	table          string
	keyField       string
	consistentRead bool
}

// DynamoDBOption configures a DynamoDBSource.
type DynamoDBOption func(*DynamoDBSource)

// WithKeyAttribute sets the attribute rows are sorted by.
// Defaults to record.DefaultKeyField.
func WithKeyAttribute(field string) DynamoDBOption {
	return func(s *DynamoDBSource) {
		s.keyField = field
	}
}

// WithConsistentRead requests strongly consistent scans.
func WithConsistentRead() DynamoDBOption {
	return func(s *DynamoDBSource) {
		s.consistentRead = true
	}
}

// NewDynamoDBSource creates a source for the given table.
func NewDynamoDBSource(client dynamodb.ScanAPIClient, table string, opts ...DynamoDBOption) *DynamoDBSource {
	s := &DynamoDBSource{
		client:   client,
		table:    table,
		keyField: record.DefaultKeyField,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDynamoDBSourceFromConfig creates a source using the default AWS
// configuration chain.
func NewDynamoDBSourceFromConfig(ctx context.Context, table string, opts []DynamoDBOption, optFns ...func(*config.LoadOptions) error) (*DynamoDBSource, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}
	return NewDynamoDBSource(dynamodb.NewFromConfig(cfg), table, opts...), nil
}

// Name returns "dynamodb://<table>".
func (s *DynamoDBSource) Name() string { return "dynamodb://" + s.table }

// Read scans the whole table.
func (s *DynamoDBSource) Read(ctx context.Context) (Payload, error) {
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(s.consistentRead),
	})

	var rows []record.Attributes
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return Payload{}, fmt.Errorf("dynamodb: scan %s: %w", s.table, err)
		}
		for _, item := range page.Items {
			attrs, err := itemAttributes(item)
			if err != nil {
				return Payload{}, fmt.Errorf("dynamodb: scan %s: %w", s.table, err)
			}
			rows = append(rows, attrs)
		}
	}

	slices.SortStableFunc(rows, func(a, b record.Attributes) int {
		return record.Compare(a.Value(s.keyField), b.Value(s.keyField))
	})

	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = record.Map(row).Key()
	}
	return Payload{Rows: rows, Checksum: hash.Strings(keys...)}, nil
}

func itemAttributes(item map[string]types.AttributeValue) (record.Attributes, error) {
	names := make([]string, 0, len(item))
	for name := range item {
		names = append(names, name)
	}
	slices.Sort(names)

	fields := make([]record.Field, 0, len(names))
	for _, name := range names {
		v, err := attributeValue(item[name])
		if err != nil {
			return record.Attributes{}, fmt.Errorf("attribute %q: %w", name, err)
		}
		fields = append(fields, record.F(name, v))
	}
	return record.NewAttributes(fields...), nil
}

func attributeValue(av types.AttributeValue) (record.Value, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return record.String(v.Value), nil
	case *types.AttributeValueMemberN:
		return parseNumber(v.Value)
	case *types.AttributeValueMemberBOOL:
		return record.Bool(v.Value), nil
	case *types.AttributeValueMemberNULL:
		return record.Null(), nil
	case *types.AttributeValueMemberL:
		out := make([]record.Value, len(v.Value))
		for i, elem := range v.Value {
			ev, err := attributeValue(elem)
			if err != nil {
				return record.Value{}, err
			}
			out[i] = ev
		}
		return record.Array(out), nil
	case *types.AttributeValueMemberM:
		attrs, err := itemAttributes(v.Value)
		if err != nil {
			return record.Value{}, err
		}
		return record.Map(attrs), nil
	case *types.AttributeValueMemberSS:
		out := make([]record.Value, len(v.Value))
		for i, s := range v.Value {
			out[i] = record.String(s)
		}
		return record.Array(out), nil
	case *types.AttributeValueMemberNS:
		out := make([]record.Value, len(v.Value))
		for i, s := range v.Value {
			n, err := parseNumber(s)
			if err != nil {
				return record.Value{}, err
			}
			out[i] = n
		}
		return record.Array(out), nil
	default:
		return record.Value{}, fmt.Errorf("unsupported attribute type %T", av)
	}
}

func parseNumber(s string) (record.Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return record.Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return record.Value{}, fmt.Errorf("invalid number %q", s)
	}
	return record.Float(f), nil
}
