package oss

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/ecomwords_server/config"
)

// Client 阿里云 OSS，存放付款截图和头像
type Client struct {
	bucket     *oss.Bucket
	bucketName string
	endpoint   string
	cdnDomain  string
}

// Enabled 是否配置了 OSS
func Enabled(cfg *config.OSSConfig) bool {
	return cfg != nil && cfg.Endpoint != "" && cfg.BucketName != "" && cfg.AccessKeyID != ""
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		bucket:     bucket,
		bucketName: cfg.BucketName,
		endpoint:   strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://"),
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// ScreenshotKey 付款截图的对象路径
func ScreenshotKey(paymentID, filename string) string {
	return fmt.Sprintf("payments/%s/%d%s", paymentID, time.Now().Unix(), strings.ToLower(path.Ext(filename)))
}

// AvatarKey 头像的对象路径
func AvatarKey(userID int64, ext string) string {
	return fmt.Sprintf("avatars/%d/%d%s", userID, time.Now().Unix(), strings.ToLower(ext))
}

// Upload 上传并返回访问 URL
func (c *Client) Upload(objectKey string, data []byte) (string, error) {
	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(ContentType(path.Ext(objectKey))))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return c.URL(objectKey), nil
}

func (c *Client) Delete(objectKey string) error {
	if err := c.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// URL 对象访问地址，优先使用 CDN 域名
func (c *Client) URL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.endpoint, objectKey)
}

// ContentType 根据扩展名获取 Content-Type
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// IsImageExt 截图和头像只接受常见图片格式
func IsImageExt(ext string) bool {
	return strings.HasPrefix(ContentType(ext), "image/")
}
