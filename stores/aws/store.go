package aws

import (
	"bytes"
	"context"
	"emojiart-server/core"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "drawings/"

// objectAPI is the subset of the S3 client used by the store.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3Store struct {
	client objectAPI
	bucket string
}

// NewDrawingStore creates an S3-backed store using the default AWS
// credential chain.
func NewDrawingStore(bucketName string) core.DrawingStore {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return newStore(s3.NewFromConfig(cfg), bucketName)
}

func newStore(client objectAPI, bucket string) *s3Store {
	return &s3Store{client: client, bucket: bucket}
}

func drawingKey(id string) (string, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return "", fmt.Errorf("invalid drawing id %q: %w", id, core.ErrDrawingNotFound)
	}
	return keyPrefix + id + ".json", nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func (s *s3Store) get(ctx context.Context, key string) (*core.Drawing, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read drawing data: %w", err)
	}

	var d core.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drawing: %w", err)
	}
	if d.Document == nil {
		d.Document = core.NewDocument()
	}
	return &d, nil
}

func (s *s3Store) put(ctx context.Context, key string, d *core.Drawing) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal drawing: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *s3Store) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *s3Store) List(ctx context.Context) ([]*core.Drawing, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})

	drawings := []*core.Drawing{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list drawings: %w", err)
		}

		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			d, err := s.get(ctx, key)
			if err != nil {
				logrus.WithError(err).WithField("key", key).Warn("Failed to read drawing object, skipping")
				continue
			}
			drawings = append(drawings, d.Meta())
		}
	}

	return drawings, nil
}

func (s *s3Store) FindID(ctx context.Context, id string) (*core.Drawing, error) {
	key, err := drawingKey(id)
	if err != nil {
		return nil, err
	}

	d, err := s.get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
		}
		return nil, fmt.Errorf("failed to get drawing %s: %w", id, err)
	}
	return d, nil
}

func (s *s3Store) Create(ctx context.Context, drawing *core.Drawing) (string, error) {
	id := ulid.Make().String()
	key, _ := drawingKey(id)

	now := time.Now()
	stored := drawing.Clone()
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Document == nil {
		stored.Document = core.NewDocument()
	}

	if err := s.put(ctx, key, stored); err != nil {
		return "", fmt.Errorf("failed to upload drawing: %w", err)
	}

	drawing.ID = id
	drawing.CreatedAt = now
	drawing.UpdatedAt = now

	logrus.WithField("drawing_id", id).Info("Drawing created successfully")
	return id, nil
}

func (s *s3Store) Save(ctx context.Context, drawing *core.Drawing) error {
	key, err := drawingKey(drawing.ID)
	if err != nil {
		return err
	}

	existing, err := s.get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("drawing with id %s: %w", drawing.ID, core.ErrDrawingNotFound)
		}
		return fmt.Errorf("failed to get drawing %s: %w", drawing.ID, err)
	}

	drawing.CreatedAt = existing.CreatedAt
	drawing.UpdatedAt = time.Now()
	if err := s.put(ctx, key, drawing); err != nil {
		return fmt.Errorf("failed to save drawing %s: %w", drawing.ID, err)
	}
	return nil
}

func (s *s3Store) Delete(ctx context.Context, id string) error {
	key, err := drawingKey(id)
	if err != nil {
		return err
	}

	// DeleteObject succeeds for missing keys, so check first.
	ok, err := s.exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete drawing %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete drawing %s: %w", id, err)
	}
	return nil
}
