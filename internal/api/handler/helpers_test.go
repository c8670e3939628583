package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/api/middleware"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testContext 本地测试上下文
type testContext struct {
	DB    *gorm.DB
	Redis *redis.Client
	MR    *miniredis.Miniredis
	Cfg   *config.Config
}

func newTestContext(t *testing.T) *testContext {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr, rdb := testutil.SetupTestRedis(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	return &testContext{
		DB:    db,
		Redis: rdb,
		MR:    mr,
		Cfg:   testConfig(),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
		Plans: map[string]config.Plan{
			"free":     {DisplayName: "Free", Price: "₹0", Credits: 5, Features: []string{"5 descriptions/day"}},
			"pro":      {DisplayName: "Pro", Price: "₹299", PricePeriod: "/month", Credits: -1, Featured: true},
			"business": {DisplayName: "Business", Price: "₹999", PricePeriod: "/month", Credits: -1},
		},
		Admin: config.AdminConfig{
			Emails: []string{"admin@ecomwords.ai"},
		},
		Checkout: config.CheckoutConfig{
			MaxScreenshotSize: 1024,
		},
	}
}

// mockAuth 模拟认证中间件
func mockAuth(userID int64, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.EmailKey, email)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 将响应 data 转为 map
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}
