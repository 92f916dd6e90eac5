package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/pithecene-io/relay/types"
)

// SQSConfig holds configuration for one SQS queue.
type SQSConfig struct {
	// QueueURL is the full queue URL (required).
	QueueURL string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom endpoint URL for SQS-compatible services
	// (e.g. LocalStack, ElasticMQ). Empty uses the default AWS endpoint.
	Endpoint string
}

// Validate checks that required SQS configuration is present.
func (c *SQSConfig) Validate() error {
	if c.QueueURL == "" {
		return errors.New("SQS queue URL is required")
	}
	return nil
}

// API is the subset of the SQS client used by SQSClient.
// Satisfied by *sqs.Client.
type API interface {
	GetQueueAttributes(ctx context.Context, in *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSClient implements Client against one SQS queue.
type SQSClient struct {
	api      API
	queueURL string
}

// NewSQSClient creates an SQS-backed queue client.
// Uses AWS SDK default credential chain (env vars, shared config, IAM role).
func NewSQSClient(ctx context.Context, cfg SQSConfig) (*SQSClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var sqsOpts []func(*sqs.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		sqsOpts = append(sqsOpts, func(o *sqs.Options) {
			o.BaseEndpoint = &endpoint
		})
	}

	return NewSQSClientWithAPI(sqs.NewFromConfig(awsConfig, sqsOpts...), cfg.QueueURL), nil
}

// NewSQSClientWithAPI wraps an existing SQS API implementation.
func NewSQSClientWithAPI(api API, queueURL string) *SQSClient {
	return &SQSClient{api: api, queueURL: queueURL}
}

// QueueURL returns the queue this client is bound to.
func (c *SQSClient) QueueURL() string {
	return c.queueURL
}

// Depth implements Client.
func (c *SQSClient) Depth(ctx context.Context) (types.QueueDepth, error) {
	out, err := c.api.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(c.queueURL),
		AttributeNames: []sqstypes.QueueAttributeName{
			sqstypes.QueueAttributeNameApproximateNumberOfMessages,
			sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible,
			sqstypes.QueueAttributeNameApproximateNumberOfMessagesDelayed,
		},
	})
	if err != nil {
		return types.QueueDepth{}, WrapTransportError(err, "depth", c.queueURL)
	}

	attrs := out.Attributes
	return types.QueueDepth{
		Visible:  atoiOrZero(attrs[string(sqstypes.QueueAttributeNameApproximateNumberOfMessages)]),
		InFlight: atoiOrZero(attrs[string(sqstypes.QueueAttributeNameApproximateNumberOfMessagesNotVisible)]),
		Delayed:  atoiOrZero(attrs[string(sqstypes.QueueAttributeNameApproximateNumberOfMessagesDelayed)]),
	}, nil
}

// Receive implements Client.
func (c *SQSClient) Receive(ctx context.Context, opts ReceiveOptions) ([]Message, error) {
	opts = opts.Clamp()

	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MessageAttributeNames: []string{"All"},
		MaxNumberOfMessages:   int32(opts.MaxMessages),
		VisibilityTimeout:     int32(opts.VisibilityTimeout.Seconds()),
		WaitTimeSeconds:       int32(opts.WaitTime.Seconds()),
	})
	if err != nil {
		return nil, WrapTransportError(err, "receive", c.queueURL)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, fromSQSMessage(m))
	}
	return msgs, nil
}

// Delete implements Client.
func (c *SQSClient) Delete(ctx context.Context, receiptHandle string) error {
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	return WrapTransportError(err, "delete", c.queueURL)
}

// Send implements Client.
func (c *SQSClient) Send(ctx context.Context, msg OutboundMessage) (types.SubmissionResult, error) {
	attrs := make(map[string]sqstypes.MessageAttributeValue, len(msg.Attributes))
	for k, v := range msg.Attributes {
		attrs[k] = sqstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	out, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(c.queueURL),
		MessageBody:       aws.String(msg.Body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return types.SubmissionResult{}, WrapTransportError(err, "send", c.queueURL)
	}

	return types.SubmissionResult{
		StatusCode: statusCode(out),
		MessageID:  aws.ToString(out.MessageId),
	}, nil
}

// statusCode extracts the HTTP status from the response metadata.
// A successful call without a raw response (e.g. a stubbed API) reports 200.
func statusCode(out *sqs.SendMessageOutput) int {
	if out == nil {
		return 0
	}
	if resp, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok && resp != nil {
		return resp.StatusCode
	}
	return 200
}

func fromSQSMessage(m sqstypes.Message) Message {
	attrs := make(map[string]string, len(m.MessageAttributes))
	for k, v := range m.MessageAttributes {
		if v.StringValue != nil {
			attrs[k] = *v.StringValue
		}
	}
	return Message{
		ID:            aws.ToString(m.MessageId),
		ReceiptHandle: aws.ToString(m.ReceiptHandle),
		Body:          aws.ToString(m.Body),
		Attributes:    attrs,
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Verify SQSClient implements Client.
var _ Client = (*SQSClient)(nil)
