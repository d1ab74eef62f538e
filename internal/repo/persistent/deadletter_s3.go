package persistent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/AppFriend/DrGolly-sub001/internal/entity"
	"github.com/AppFriend/DrGolly-sub001/pkg/s3client"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type DeadLetterRepo struct {
	*s3client.S3Client
	bucket string
}

func NewDeadLetterRepo(s3c *s3client.S3Client, bucket string) *DeadLetterRepo {
	return &DeadLetterRepo{s3c, bucket}
}

// Archive writes the record under deadletter/{day}/{uuid}.json so failed
// events can be replayed later.
func (r *DeadLetterRepo) Archive(ctx context.Context, record *entity.DeadLetterRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("DeadLetterRepo - Archive - json.Marshal: %w", err)
	}

	key := fmt.Sprintf("deadletter/%s/%s.json", record.ArchivedAt.UTC().Format("2006-01-02"), uuid.New())

	_, err = r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("DeadLetterRepo - Archive - r.Client.PutObject: %w", err)
	}

	return nil
}
