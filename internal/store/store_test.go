package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambda-comments/internal/models"
	"lambda-comments/internal/store"
)

type fakeDynamo struct {
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

type fakeS3 struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.keys = append(f.keys, aws.ToString(in.Key))
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func testRecord() models.AcceptedRecord {
	rec := models.NewAcceptedRecord(models.Comment{
		Permalink:      "http://example.com/blog/1/",
		UserAgent:      "testhost/1.0",
		CommentContent: "비빔밥(乒乓飯)",
		AuthorName:     "Bob Bob",
		AuthorEmail:    "bob@example.com",
	}, "64.46.22.7", time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))
	rec.ID = "0192a3b4-c5d6-7e8f-9a0b-1c2d3e4f5a6b"
	return rec
}

func TestSave_TableAndArchive(t *testing.T) {
	db := &fakeDynamo{}
	objects := &fakeS3{}
	s := store.New(db, "comments", store.WithArchive(objects, "bucket", "comments/"))

	rec := testRecord()
	require.NoError(t, s.Save(context.Background(), rec))

	require.Len(t, db.inputs, 1)
	in := db.inputs[0]
	assert.Equal(t, "comments", aws.ToString(in.TableName))
	assert.Equal(t, "attribute_not_exists(id)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberS{Value: rec.ID}, in.Item["id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "64.46.22.7"}, in.Item["source_ip"])

	comment, ok := in.Item["comment"].(*types.AttributeValueMemberM)
	require.True(t, ok)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "비빔밥(乒乓飯)"}, comment.Value["comment_content"])
	assert.NotContains(t, comment.Value, "referrer")

	require.Equal(t, []string{"comments/" + rec.ID + ".json"}, objects.keys)
	var archived models.AcceptedRecord
	require.NoError(t, json.Unmarshal(objects.bodies[0], &archived))
	assert.Equal(t, rec, archived)
}

func TestSave_NoArchiveWithoutBucket(t *testing.T) {
	db := &fakeDynamo{}
	objects := &fakeS3{}
	s := store.New(db, "comments", store.WithArchive(objects, "", "comments/"))

	require.NoError(t, s.Save(context.Background(), testRecord()))
	assert.Empty(t, objects.keys)
	assert.Len(t, db.inputs, 1)
}

func TestSave_Duplicate(t *testing.T) {
	db := &fakeDynamo{err: &types.ConditionalCheckFailedException{Message: aws.String("exists")}}
	s := store.New(db, "comments")

	err := s.Save(context.Background(), testRecord())
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestSave_TableError(t *testing.T) {
	db := &fakeDynamo{err: errors.New("throttled")}
	s := store.New(db, "comments")

	err := s.Save(context.Background(), testRecord())
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrDuplicate)
	assert.Contains(t, err.Error(), "dynamodb put error")
}

func TestSave_ArchiveErrorSkipsTable(t *testing.T) {
	db := &fakeDynamo{}
	s := store.New(db, "comments", store.WithArchive(&fakeS3{err: errors.New("denied")}, "bucket", ""))

	err := s.Save(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put error")
	assert.Empty(t, db.inputs)
}

func TestSave_RequiresID(t *testing.T) {
	rec := testRecord()
	rec.ID = ""
	assert.Error(t, store.New(&fakeDynamo{}, "comments").Save(context.Background(), rec))
}
