package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// MaxArticleSize 保存文章的最大大小 10MB
	MaxArticleSize = 10 * 1024 * 1024
)

// ArticleFile 已保存到磁盘的文章文件
type ArticleFile struct {
	// 标识信息
	ID       string `json:"id"`        // 文件唯一ID
	Keyword  string `json:"keyword"`   // 来源关键词
	FilePath string `json:"file_path"` // 本地存储路径

	// 元数据
	Size     int64  `json:"size"`      // 文件大小(字节)
	ImageURL string `json:"image_url"` // 关联的配图URL(可选)

	// 时间戳
	SavedAt time.Time `json:"saved_at"` // 保存时间
}

// ValidateSize 验证文件大小
func (f *ArticleFile) ValidateSize() error {
	if f.Size <= 0 {
		return fmt.Errorf("文件大小必须大于0")
	}
	if f.Size > MaxArticleSize {
		return fmt.Errorf("文件大小超过限制: %d > %d", f.Size, MaxArticleSize)
	}
	return nil
}

// ToJSON 序列化为JSON
func (f *ArticleFile) ToJSON() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}
