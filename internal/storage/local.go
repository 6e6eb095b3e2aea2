package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

// LocalStorage 本地磁盘实现，仅用于开发环境。
// 文件通过后端的 /uploads 静态路由对外可见，所以 MakePublic 是空操作。
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &LocalStorage{basePath: basePath, baseURL: baseURL}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	key := util.GenerateObjectName(folder, file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	fullPath := filepath.Join(s.basePath, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("保存文件失败: %w", err)
	}

	util.Logger.Info("文件上传成功", zap.String("fullPath", fullPath))
	return fmt.Sprintf("%s/uploads/%s", s.baseURL, key), nil
}

func (s *LocalStorage) Delete(ctx context.Context, url string) bool {
	key := util.ObjectKeyFromURL(url)
	if key == "" {
		return false
	}

	if err := os.Remove(filepath.Join(s.basePath, key)); err != nil {
		util.Logger.Warn("删除本地文件失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *LocalStorage) MakePublic(ctx context.Context, url string) error {
	return nil
}
