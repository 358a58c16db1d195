/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sethvargo/go-retry"

	mcerrors "github.com/dbanda/MediaCrush/errors"
	"github.com/dbanda/MediaCrush/storagemodels"
)

// API is the subset of the DynamoDB client used by the datastore.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

// DynamodbDataStore implements datastore.HashStore with one DynamoDB item per key.
// Hash fields are top-level string attributes named FieldPrefix+field; sets are
// a single string-set attribute.
type DynamodbDataStore struct {
	client API
	table  TableConfig
	opts   storagemodels.ScanOptions
}

// NewDynamoDBClient initializes a DynamoDB client. Empty static credentials
// fall back to the default credential chain; a non-empty endpoint targets a
// local or compatible service.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, endpoint string) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if awsAccessKey != "" && awsSecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, nil
}

// New constructs a DynamodbDataStore over an existing client.
func New(client API, table TableConfig, opts ...storagemodels.ScanOption) (*DynamodbDataStore, error) {
	if client == nil {
		return nil, errors.New("dynamodb client required")
	}
	if table.TableName == "" {
		return nil, mcerrors.NewValidationError("table", "table name required")
	}
	return &DynamodbDataStore{
		client: client,
		table:  table.withDefaults(),
		opts:   storagemodels.Apply(opts...),
	}, nil
}

func (d *DynamodbDataStore) key(key string) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}
	return map[string]types.AttributeValue{d.table.KeyAttribute: av}, nil
}

// HSet writes every field in one UpdateItem call.
func (d *DynamodbDataStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	k, err := d.key(key)
	if err != nil {
		return err
	}

	updateExpr, names, values := buildSetExpression(d.table.FieldPrefix, fields)
	_, err = d.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 &d.table.TableName,
		Key:                       k,
		UpdateExpression:          &updateExpr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("UpdateItem (hset %s) failed: %w", key, err)
	}
	return nil
}

// HGet reads one field with a projection.
func (d *DynamodbDataStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	k, err := d.key(key)
	if err != nil {
		return "", false, err
	}

	attr := d.table.FieldPrefix + field
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:                &d.table.TableName,
		Key:                      k,
		ProjectionExpression:     aws.String("#f"),
		ExpressionAttributeNames: map[string]string{"#f": attr},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("GetItem (hget %s) failed: %w", key, err)
	}
	if out.Item == nil {
		return "", false, nil
	}
	v, ok := attributeString(out.Item[attr])
	return v, ok, nil
}

// HGetAll returns the prefixed attributes of the item with the prefix stripped.
func (d *DynamodbDataStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	k, err := d.key(key)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.table.TableName,
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem (hgetall %s) failed: %w", key, err)
	}
	return decodeFields(d.table.FieldPrefix, out.Item), nil
}

// HDel removes field attributes.
func (d *DynamodbDataStore) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	k, err := d.key(key)
	if err != nil {
		return err
	}

	names := make(map[string]string, len(fields))
	clauses := make([]string, 0, len(fields))
	for i, f := range fields {
		placeholder := fmt.Sprintf("#f%d", i)
		names[placeholder] = d.table.FieldPrefix + f
		clauses = append(clauses, placeholder)
	}
	expr := "REMOVE " + strings.Join(clauses, ", ")

	_, err = d.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                &d.table.TableName,
		Key:                      k,
		UpdateExpression:         &expr,
		ExpressionAttributeNames: names,
	})
	if err != nil {
		return fmt.Errorf("UpdateItem (hdel %s) failed: %w", key, err)
	}
	return nil
}

// HIncrBy performs an optimistic read-modify-write guarded by a condition on
// the previous value. Lost races are retried with exponential backoff, so no
// increment is lost while retries remain.
func (d *DynamodbDataStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	k, err := d.key(key)
	if err != nil {
		return 0, err
	}
	attr := d.table.FieldPrefix + field

	var result int64
	backoff := retry.WithMaxRetries(d.opts.MaxRetries, retry.NewExponential(d.opts.RetryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		current, exists, err := d.HGet(ctx, key, field)
		if err != nil {
			return err
		}
		var n int64
		if exists {
			n, err = strconv.ParseInt(current, 10, 64)
			if err != nil {
				return fmt.Errorf("hash value is not an integer: %q", current)
			}
		}

		input := buildIncrementInput(d.table.TableName, k, attr, current, exists, n+delta)
		_, err = d.client.UpdateItem(ctx, input)
		if err != nil {
			var cfe *types.ConditionalCheckFailedException
			if errors.As(err, &cfe) {
				return retry.RetryableError(mcerrors.NewConditionFailedError("increment", *input.ConditionExpression))
			}
			return fmt.Errorf("UpdateItem (hincrby %s) failed: %w", key, err)
		}
		result = n + delta
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// SAdd adds members to the string-set attribute.
func (d *DynamodbDataStore) SAdd(ctx context.Context, key string, members ...string) error {
	return d.updateSet(ctx, "ADD", key, members)
}

// SRem removes members from the string-set attribute.
func (d *DynamodbDataStore) SRem(ctx context.Context, key string, members ...string) error {
	return d.updateSet(ctx, "DELETE", key, members)
}

func (d *DynamodbDataStore) updateSet(ctx context.Context, action, key string, members []string) error {
	// DynamoDB rejects empty sets.
	if len(members) == 0 {
		return nil
	}
	k, err := d.key(key)
	if err != nil {
		return err
	}

	expr := action + " #m :s"
	_, err = d.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 &d.table.TableName,
		Key:                       k,
		UpdateExpression:          &expr,
		ExpressionAttributeNames:  map[string]string{"#m": d.table.MembersAttribute},
		ExpressionAttributeValues: map[string]types.AttributeValue{":s": &types.AttributeValueMemberSS{Value: members}},
	})
	if err != nil {
		return fmt.Errorf("UpdateItem (%s %s) failed: %w", strings.ToLower(action), key, err)
	}
	return nil
}

// SIsMember loads the set and checks it.
func (d *DynamodbDataStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	members, err := d.SMembers(ctx, key)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m == member {
			return true, nil
		}
	}
	return false, nil
}

// SMembers returns the string-set attribute.
func (d *DynamodbDataStore) SMembers(ctx context.Context, key string) ([]string, error) {
	k, err := d.key(key)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:                &d.table.TableName,
		Key:                      k,
		ProjectionExpression:     aws.String("#m"),
		ExpressionAttributeNames: map[string]string{"#m": d.table.MembersAttribute},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem (smembers %s) failed: %w", key, err)
	}
	av, ok := out.Item[d.table.MembersAttribute]
	if !ok {
		return nil, nil
	}
	var members []string
	if err := attributevalue.Unmarshal(av, &members); err != nil {
		return nil, fmt.Errorf("failed to unmarshal members of %s: %w", key, err)
	}
	return members, nil
}

// Keys scans the table for partition keys beginning with prefix.
func (d *DynamodbDataStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	paginator := sdk.NewScanPaginator(d.client, &sdk.ScanInput{
		TableName:                 &d.table.TableName,
		FilterExpression:          aws.String("begins_with(#k, :p)"),
		ProjectionExpression:      aws.String("#k"),
		ExpressionAttributeNames:  map[string]string{"#k": d.table.KeyAttribute},
		ExpressionAttributeValues: map[string]types.AttributeValue{":p": &types.AttributeValueMemberS{Value: prefix}},
		Limit:                     aws.Int32(d.opts.PageSize),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("Scan (keys %s) failed: %w", prefix, err)
		}
		for _, item := range page.Items {
			if k, ok := attributeString(item[d.table.KeyAttribute]); ok {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

// Del removes items one by one; DeleteItem on a missing key succeeds.
func (d *DynamodbDataStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		k, err := d.key(key)
		if err != nil {
			return err
		}
		_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
			TableName: &d.table.TableName,
			Key:       k,
		})
		if err != nil {
			return fmt.Errorf("failed to delete item %s in DynamoDB: %w", key, err)
		}
	}
	return nil
}

// buildSetExpression transforms a map of field->value into:
//   - an "update expression" (e.g., "SET #f0 = :v0, #f1 = :v1")
//   - a corresponding map of expression attribute names
//   - a corresponding map of expression attribute values
//
// Fields are visited in sorted order so the expression is deterministic.
func buildSetExpression(prefix string, fields map[string]string) (string, map[string]string, map[string]types.AttributeValue) {
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)

	setClauses := make([]string, 0, len(fields))
	exprAttrNames := make(map[string]string, len(fields))
	exprAttrValues := make(map[string]types.AttributeValue, len(fields))
	for i, field := range names {
		placeholderName := fmt.Sprintf("#f%d", i)
		placeholderValue := fmt.Sprintf(":v%d", i)

		setClauses = append(setClauses, fmt.Sprintf("%s = %s", placeholderName, placeholderValue))
		exprAttrNames[placeholderName] = prefix + field
		exprAttrValues[placeholderValue] = &types.AttributeValueMemberS{Value: fields[field]}
	}
	return "SET " + strings.Join(setClauses, ", "), exprAttrNames, exprAttrValues
}

func buildIncrementInput(table string, key map[string]types.AttributeValue, attr, current string, exists bool, next int64) *sdk.UpdateItemInput {
	values := map[string]types.AttributeValue{
		":new": &types.AttributeValueMemberS{Value: strconv.FormatInt(next, 10)},
	}
	condition := "attribute_not_exists(#f)"
	if exists {
		condition = "#f = :old"
		values[":old"] = &types.AttributeValueMemberS{Value: current}
	}
	return &sdk.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String("SET #f = :new"),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  map[string]string{"#f": attr},
		ExpressionAttributeValues: values,
	}
}

func decodeFields(prefix string, item map[string]types.AttributeValue) map[string]string {
	out := make(map[string]string, len(item))
	for name, av := range item {
		field, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		if v, ok := attributeString(av); ok {
			out[field] = v
		}
	}
	return out
}

// attributeString converts a scalar attribute into its string form.
func attributeString(av types.AttributeValue) (string, bool) {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, true
	case *types.AttributeValueMemberN:
		return tv.Value, true
	default:
		return "", false
	}
}
