package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

type S3Client struct {
	s3     *s3.S3
	bucket string
}

func NewS3Client(region, bucket string) (*S3Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3Client{
		s3:     s3.New(sess),
		bucket: bucket,
	}, nil
}

func (c *S3Client) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	key := util.GenerateObjectName(folder, file.Filename)

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, err = c.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(file.Header.Get("Content-Type")),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key), nil
}

func (c *S3Client) Delete(ctx context.Context, url string) bool {
	key := util.ObjectKeyFromURL(url)
	if key == "" {
		return false
	}

	_, err := c.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		util.Logger.Warn("删除存储对象失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *S3Client) MakePublic(ctx context.Context, url string) error {
	key := util.ObjectKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("无法从 URL 解析存储键: %s", url)
	}

	_, err := c.s3.PutObjectAclWithContext(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		ACL:    aws.String(s3.ObjectCannedACLPublicRead),
	})
	return err
}
