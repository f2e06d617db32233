package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"mediashare/pkg/config"
	"mediashare/pkg/logger"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrInvalidAssetURL is returned when a URL does not address an object in the bucket.
var ErrInvalidAssetURL = errors.New("invalid asset url")

// Asset describes an uploaded object.
type Asset struct {
	URL         string
	PublicID    string
	ContentType string
	Size        int64
	// Duration in seconds; zero for non audio/video content.
	Duration float64
}

type Client struct {
	s3Client *s3.S3
	bucket   string
	prober   Prober
	logger   *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// Support MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if cfg.S3UseSSL == "false" {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := &Client{
		s3Client: s3.New(sess),
		bucket:   cfg.S3BucketName,
		prober:   FFProbe{Path: cfg.FFProbePath},
		logger:   log,
	}

	// Ensure bucket exists (for MinIO)
	if _, err := client.s3Client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(cfg.S3BucketName)}); err != nil {
		if _, err := client.s3Client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(cfg.S3BucketName)}); err != nil {
			log.Warn("Could not create bucket %s: %v", cfg.S3BucketName, err)
		}
	}

	return client, nil
}

// Upload stores the file at localPath under folder and returns its URL and
// derived metadata.
func (c *Client) Upload(ctx context.Context, folder, localPath string) (*Asset, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	key := objectKey(folder, localPath, mtype)
	_, err = c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(mtype.String()),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	asset := &Asset{
		URL:         c.objectURL(key),
		PublicID:    key,
		ContentType: mtype.String(),
		Size:        info.Size(),
	}
	if isTimedMedia(mtype) {
		duration, err := c.prober.Duration(ctx, localPath)
		if err != nil {
			c.logger.Warn("Could not probe duration of %s: %v", key, err)
		}
		asset.Duration = duration
	}

	return asset, nil
}

// Exists reports whether an object with publicID is stored.
func (c *Client) Exists(ctx context.Context, publicID string) (bool, error) {
	_, err := c.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		var reqErr awserr.RequestFailure
		if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object in S3: %w", err)
	}
	return true, nil
}

// Delete removes publicID. found is false when the object was already absent.
func (c *Client) Delete(ctx context.Context, publicID string) (bool, error) {
	found, err := c.Exists(ctx, publicID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	_, err = c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return true, fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return true, nil
}

func (c *Client) PublicIDFromURL(rawURL string) (string, error) {
	return PublicIDFromURL(c.bucket, rawURL)
}

func (c *Client) objectURL(key string) string {
	// Generate URL based on endpoint (MinIO or AWS S3)
	endpoint := aws.StringValue(c.s3Client.Config.Endpoint)
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "https"
		if aws.BoolValue(c.s3Client.Config.DisableSSL) {
			protocol = "http"
		}
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, endpoint, c.bucket, key)
	}

	region := aws.StringValue(c.s3Client.Config.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, region, key)
}

// PublicIDFromURL extracts the object key from a URL previously issued for
// bucket. Both virtual-hosted (bucket.s3.region.amazonaws.com/key) and
// path-style (endpoint/bucket/key) URLs are accepted.
func PublicIDFromURL(bucket, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetURL, rawURL)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if !strings.HasPrefix(u.Host, bucket+".") {
		var ok bool
		key, ok = strings.CutPrefix(key, bucket+"/")
		if !ok {
			return "", fmt.Errorf("%w: %q is not in bucket %s", ErrInvalidAssetURL, rawURL, bucket)
		}
	}
	if key == "" {
		return "", fmt.Errorf("%w: %q has no object key", ErrInvalidAssetURL, rawURL)
	}
	return key, nil
}

func objectKey(folder, localPath string, mtype *mimetype.MIME) string {
	ext := filepath.Ext(localPath)
	if ext == "" {
		ext = mtype.Extension()
	}
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), strings.ToLower(ext))
}

func isTimedMedia(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") || strings.HasPrefix(m.String(), "audio/") {
			return true
		}
	}
	return false
}
