package storage

import (
	"context"
	"mime/multipart"
)

// BlobStore 对象存储适配器。
// Upload 写入字节并开放公共读权限，返回稳定的公开 URL；
// Delete 按 URL 尽力删除，失败只返回 false，绝不阻断上层的主操作；
// MakePublic 用于客户端直传后补开公共读权限。
type BlobStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
	Delete(ctx context.Context, url string) bool
	MakePublic(ctx context.Context, url string) error
}
