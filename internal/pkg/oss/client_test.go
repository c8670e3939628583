package oss

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/ecomwords_server/config"
)

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(nil))
	assert.False(t, Enabled(&config.OSSConfig{Endpoint: "oss-cn-hangzhou.aliyuncs.com"}))
	assert.True(t, Enabled(&config.OSSConfig{
		Endpoint:    "oss-cn-hangzhou.aliyuncs.com",
		BucketName:  "ecomwords",
		AccessKeyID: "id",
	}))
}

func TestClient_URL(t *testing.T) {
	c, err := NewClient(&config.OSSConfig{
		Endpoint:        "https://oss-cn-hangzhou.aliyuncs.com",
		AccessKeyID:     "id",
		AccessKeySecret: "secret",
		BucketName:      "ecomwords",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://ecomwords.oss-cn-hangzhou.aliyuncs.com/payments/X/1.png", c.URL("payments/X/1.png"))

	c.cdnDomain = "cdn.ecomwords.ai"
	assert.Equal(t, "https://cdn.ecomwords.ai/avatars/1/1.jpg", c.URL("avatars/1/1.jpg"))
}

func TestObjectKeys(t *testing.T) {
	key := ScreenshotKey("AB12CD34E", "UPI-Receipt.PNG")
	assert.True(t, strings.HasPrefix(key, "payments/AB12CD34E/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	key = AvatarKey(42, ".JPG")
	assert.True(t, strings.HasPrefix(key, "avatars/42/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType(".JPEG"))
	assert.Equal(t, "image/webp", ContentType(".webp"))
	assert.Equal(t, "application/octet-stream", ContentType(".exe"))
	assert.True(t, IsImageExt(".png"))
	assert.False(t, IsImageExt(".pdf"))
}
