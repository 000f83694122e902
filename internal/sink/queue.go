package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"lambda-comments/internal/models"
)

// SQSAPI is the subset of the SQS client used by Queue.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Queue enqueues records on SQS for the worker to store.
type Queue struct {
	client   SQSAPI
	queueURL string
}

// NewQueue builds a Queue sink.
func NewQueue(client SQSAPI, queueURL string) *Queue {
	return &Queue{client: client, queueURL: queueURL}
}

// Commit implements Sink.
func (q *Queue) Commit(ctx context.Context, rec models.AcceptedRecord) (string, error) {
	rec.ID = NewID()
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"id": {DataType: aws.String("String"), StringValue: aws.String(rec.ID)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sqs send error: %w", err)
	}
	return rec.ID, nil
}
