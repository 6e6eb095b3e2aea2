package util

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateObjectName 生成对象存储键：folder/<毫秒时间戳>-<随机后缀><扩展名>
func GenerateObjectName(folder, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s/%d-%s%s", folder, time.Now().UnixMilli(), suffix, ext)
}

// NewCommentID 生成评论标识：<毫秒时间戳>-<随机令牌>
func NewCommentID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString())
}

// ObjectKeyFromURL 从公开 URL 中提取存储键（最后两段路径）
func ObjectKeyFromURL(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
