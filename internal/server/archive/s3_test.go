package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	keys   []string
	bodies [][]byte
	failOn string
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("put failed")
	}
	b, _ := io.ReadAll(in.Body)
	f.keys = append(f.keys, key)
	f.bodies = append(f.bodies, b)
	return &s3.PutObjectOutput{}, nil
}

func element(guid string) *models.Element {
	ts := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	return &models.Element{
		GUID: guid, TypeName: "Comment", Version: 2,
		Properties: map[string]any{"commentText": "hi"},
		CreatedBy:  "alice", UpdatedBy: "bob", CreateTime: ts, UpdateTime: ts,
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "archive/Comment/2026/03/07/g1.json", Key(element("g1")))
}

func TestS3Archiver_Archive(t *testing.T) {
	fp := &fakePutter{}
	a := &S3Archiver{client: fp, bucket: "metadata"}

	require.NoError(t, a.Archive(context.Background(), []*models.Element{element("g1"), element("g2")}))
	require.Equal(t, []string{"archive/Comment/2026/03/07/g1.json", "archive/Comment/2026/03/07/g2.json"}, fp.keys)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(fp.bodies[0], &snap))
	assert.Equal(t, "g1", snap["guid"])
	assert.Equal(t, "bob", snap["updatedBy"])
	assert.Equal(t, map[string]any{"commentText": "hi"}, snap["properties"])
}

func TestS3Archiver_ArchiveKeepsGoingOnFailure(t *testing.T) {
	fp := &fakePutter{failOn: "archive/Comment/2026/03/07/g1.json"}
	a := &S3Archiver{client: fp, bucket: "metadata"}

	err := a.Archive(context.Background(), []*models.Element{element("g1"), element("g2")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive g1")
	assert.Equal(t, []string{"archive/Comment/2026/03/07/g2.json"}, fp.keys)
}

func TestNewS3Archiver_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Archiver(context.Background(), S3Config{Bucket: "b"})
	require.ErrorContains(t, err, "aws config: no creds")
}

func TestNewS3Archiver_UsesFactory(t *testing.T) {
	origNew := newS3ClientFromConfig
	t.Cleanup(func() { newS3ClientFromConfig = origNew })

	fp := &fakePutter{}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fp
	}

	a, err := NewS3Archiver(context.Background(), S3Config{
		Region: "us-east-1", AccessKey: "k", SecretKey: "s", Bucket: "b", BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.Same(t, fp, a.client)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestNopArchiver(t *testing.T) {
	require.NoError(t, NopArchiver{}.Archive(context.Background(), []*models.Element{element("g1")}))
}
