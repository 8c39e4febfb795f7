// Package store persists triage records in DynamoDB for later polling.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/anycompany/connect-email-triage/internal/record"
)

// DefaultTableName is the read-side fallback when no table is configured.
const DefaultTableName = "TempoStorageEmailAnalyseResult"

// Retention is how long a record stays pollable before the table's TTL
// mechanism expires it.
const Retention = 3 * 24 * time.Hour

// keyAttribute is the table's partition key.
const keyAttribute = "contactId"

// ErrNotFound indicates no record exists for the contact.
var ErrNotFound = errors.New("record not found")

// DynamoDBAPI is the minimal DynamoDB interface required by Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store reads and writes triage records keyed by contact id.
type Store struct {
	client    DynamoDBAPI
	tableName string
	now       func() time.Time
}

// New creates a Store over the named table.
func New(client DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// Save persists the record keyed by its contact id, stamping the TTL at
// write time. The caller decides whether a failure matters; the triage
// pipeline logs and continues.
func (s *Store) Save(ctx context.Context, rec *record.Record) error {
	rec.TTL = s.now().Add(Retention).Unix()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.ContactID, err)
	}
	return nil
}

// Lookup returns the record for a contact id, or ErrNotFound. DynamoDB's
// numeric attribute values unmarshal into the record's native integer fields.
func (s *Store) Lookup(ctx context.Context, contactID string) (*record.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			keyAttribute: &types.AttributeValueMemberS{Value: contactID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", contactID, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var rec record.Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", contactID, err)
	}
	return &rec, nil
}

// Delete removes the record for a contact id. Retained for retention tooling;
// the poll path leaves records to expire via TTL.
func (s *Store) Delete(ctx context.Context, contactID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			keyAttribute: &types.AttributeValueMemberS{Value: contactID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete record %s: %w", contactID, err)
	}
	return nil
}
