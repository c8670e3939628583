package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	OSS          OSSConfig          `mapstructure:"oss"`
	OAuth        OAuthConfig        `mapstructure:"oauth"`
	Email        EmailConfig        `mapstructure:"email"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Notification NotificationConfig `mapstructure:"notification"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Plans        map[string]Plan    `mapstructure:"plans"`
	Gemini       GeminiConfig       `mapstructure:"gemini"`
	Admin        AdminConfig        `mapstructure:"admin"`
	Checkout     CheckoutConfig     `mapstructure:"checkout"`
	Reconcile    ReconcileConfig    `mapstructure:"reconcile"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	NotificationQueue string `mapstructure:"notification_queue"`
	MaxWorkers        int    `mapstructure:"max_workers"`
}

type NotificationConfig struct {
	DelayMS    int `mapstructure:"delay_ms"`    // 未配置 SMTP 时模拟的发送延迟
	MaxRetries int `mapstructure:"max_retries"` // 单条消息最大重试次数
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// Plan 套餐定义，Credits 为 -1 表示不限次数
type Plan struct {
	DisplayName string   `mapstructure:"display_name"`
	Price       string   `mapstructure:"price"`
	PricePeriod string   `mapstructure:"price_period"`
	YearlyPrice string   `mapstructure:"yearly_price"`
	Description string   `mapstructure:"description"`
	Credits     int      `mapstructure:"credits"`
	Features    []string `mapstructure:"features"`
	Featured    bool     `mapstructure:"featured"`
}

type GeminiConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	TextModel      string  `mapstructure:"text_model"`
	VisionModel    string  `mapstructure:"vision_model"`
	Temperature    float32 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
}

type AdminConfig struct {
	Emails []string `mapstructure:"emails"`
}

type CheckoutConfig struct {
	MaxScreenshotSize int64 `mapstructure:"max_screenshot_size"` // 字节
}

type ReconcileConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
	BatchSize       int `mapstructure:"batch_size"`
	LeaseSeconds    int `mapstructure:"lease_seconds"`
}

// IsAdminEmail 判断邮箱是否在管理员列表中
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.Admin.Emails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

// FreeCredits 新注册用户的初始次数
func (c *Config) FreeCredits() int {
	if p, ok := c.Plans["free"]; ok && p.Credits > 0 {
		return p.Credits
	}
	return DefaultFreeCredits
}

const DefaultFreeCredits = 5

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("jwt.expire_hours", 168)
	v.SetDefault("queue.notification_queue", "ecomwords:notifications")
	v.SetDefault("queue.max_workers", 2)
	v.SetDefault("notification.delay_ms", 800)
	v.SetDefault("notification.max_retries", 5)
	v.SetDefault("gemini.text_model", "gemini-2.5-flash")
	v.SetDefault("gemini.vision_model", "gemini-2.5-flash-image")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.timeout_seconds", 60)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("checkout.max_screenshot_size", 5*1024*1024)
	v.SetDefault("reconcile.interval_minutes", 5)
	v.SetDefault("reconcile.batch_size", 50)
	v.SetDefault("reconcile.lease_seconds", 120)
}

func Load(configPath string) (*Config, error) {
	// 优先读取 config.local.yaml（包含真实密钥，不提交到 git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "API_KEY")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
