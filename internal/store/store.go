// Package store persists accepted comments to DynamoDB and archives them as JSON in S3.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lambda-comments/internal/models"
)

// ErrDuplicate is returned when a record with the same ID was already stored.
var ErrDuplicate = errors.New("store: duplicate record")

// DynamoAPI is the subset of the DynamoDB client used here.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ObjectAPI is the subset of the S3 client used here.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store writes records to a table and, when a bucket is set, to an object archive.
type Store struct {
	db      DynamoAPI
	table   string
	objects ObjectAPI
	bucket  string
	prefix  string
}

// Option configures a Store.
type Option func(*Store)

// WithArchive also writes each record to bucket under prefix.
func WithArchive(objects ObjectAPI, bucket, prefix string) Option {
	return func(s *Store) {
		s.objects = objects
		s.bucket = bucket
		s.prefix = prefix
	}
}

// New builds a Store for table.
func New(db DynamoAPI, table string, opts ...Option) *Store {
	s := &Store{db: db, table: table}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the archive object key for id.
func (s *Store) Key(id string) string {
	return s.prefix + id + ".json"
}

// Save archives rec and then inserts it. The archive write is keyed by ID so a redelivered
// record overwrites the same object; the table insert is conditional and reports ErrDuplicate.
func (s *Store) Save(ctx context.Context, rec models.AcceptedRecord) error {
	if rec.ID == "" {
		return errors.New("store: record has no id")
	}

	if s.objects != nil && s.bucket != "" {
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		_, err = s.objects.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.Key(rec.ID)),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("s3 put error: %w", err)
		}
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
		}
		return fmt.Errorf("dynamodb put error: %w", err)
	}
	return nil
}
