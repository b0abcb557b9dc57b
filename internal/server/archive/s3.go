package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates the bucket used for snapshots.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
}

// S3Archiver writes one JSON object per element into an S3-compatible bucket.
type S3Archiver struct {
	client objectPutter
	bucket string
}

// NewS3Archiver builds the S3 client eagerly so configuration mistakes
// surface at startup.
func NewS3Archiver(ctx context.Context, c S3Config) (*S3Archiver, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Archiver{client: client, bucket: c.Bucket}, nil
}

type snapshot struct {
	GUID       string         `json:"guid"`
	TypeName   string         `json:"typeName"`
	AnchorGUID string         `json:"anchorGUID,omitempty"`
	Version    int64          `json:"version"`
	CreatedBy  string         `json:"createdBy"`
	UpdatedBy  string         `json:"updatedBy"`
	CreateTime string         `json:"createTime"`
	UpdateTime string         `json:"updateTime"`
	Properties map[string]any `json:"properties"`
}

// Key returns the object key for an element snapshot:
// archive/<TypeName>/<yyyy>/<mm>/<dd>/<guid>.json, dated by last update.
func Key(e *models.Element) string {
	d := e.UpdateTime.UTC()
	return fmt.Sprintf("archive/%s/%04d/%02d/%02d/%s.json", e.TypeName, d.Year(), int(d.Month()), d.Day(), e.GUID)
}

// Archive uploads every element; failures are joined so one bad object does
// not hide the rest.
func (a *S3Archiver) Archive(ctx context.Context, elements []*models.Element) error {
	var errs []error
	for _, e := range elements {
		body, err := json.Marshal(snapshot{
			GUID:       e.GUID,
			TypeName:   e.TypeName,
			AnchorGUID: e.AnchorGUID,
			Version:    e.Version,
			CreatedBy:  e.CreatedBy,
			UpdatedBy:  e.UpdatedBy,
			CreateTime: e.CreateTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
			UpdateTime: e.UpdateTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Properties: e.Properties,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}

		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(Key(e)),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("archive %s: %w", e.GUID, err))
		}
	}
	return errors.Join(errs...)
}
