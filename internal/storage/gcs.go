package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

type GCSClient struct {
	client     *storage.Client
	bucketName string
}

func NewGCSClient(bucketName, credentialsFile string) (*GCSClient, error) {
	ctx := context.Background()
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *GCSClient) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	key := util.GenerateObjectName(folder, file.Filename)
	obj := c.client.Bucket(c.bucketName).Object(key)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	writer := obj.NewWriter(ctx)
	writer.ContentType = file.Header.Get("Content-Type")
	if _, err = io.Copy(writer, src); err != nil {
		writer.Close()
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", err
	}

	// 开放公共读。失败时对象可能已写入但不可公开访问，不做回滚
	if err = obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("设置公共读权限失败: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, key), nil
}

func (c *GCSClient) Delete(ctx context.Context, url string) bool {
	key := util.ObjectKeyFromURL(url)
	if key == "" {
		return false
	}

	if err := c.client.Bucket(c.bucketName).Object(key).Delete(ctx); err != nil {
		util.Logger.Warn("删除存储对象失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *GCSClient) MakePublic(ctx context.Context, url string) error {
	key := util.ObjectKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("无法从 URL 解析存储键: %s", url)
	}
	return c.client.Bucket(c.bucketName).Object(key).ACL().Set(ctx, storage.AllUsers, storage.RoleReader)
}
