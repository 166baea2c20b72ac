package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSessionSecret 是未设置 SESSION_SECRET 时的开发用密钥，仅允许在非 release 模式下使用。
const DevSessionSecret = "photofolio-dev-secret"

// ErrInsecureSessionSecret 表示 release 模式下缺少真实的会话密钥。
var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set to a private value in release mode")

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr  string
	Port        string
	GinMode     string
	LogMode     string
	AutoMigrate bool

	DatabaseDriver string
	DatabaseURL    string
	DatabasePath   string

	SessionSecret string

	BlobBackend   string
	UploadDir     string
	UploadURLPath string
	MaxUploadSize int64
	S3            S3Config

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AdminEmails        []string

	AllowedOrigins  []string
	RedisURL        string
	ProjectsListTTL time.Duration
}

// S3Config 描述 S3 兼容对象存储（MinIO 等）的连接参数。
type S3Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
}

// LoadDotEnv 读取 .env 文件中的变量，文件不存在时不视为错误。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databaseDriver := strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseDriver == "" {
		if databaseURL != "" {
			databaseDriver = "postgres"
		} else {
			databaseDriver = "sqlite"
		}
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "data/photofolio.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = DevSessionSecret
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	blobBackend := strings.ToLower(strings.TrimSpace(os.Getenv("BLOB_BACKEND")))
	if blobBackend == "" {
		blobBackend = "local"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}

	uploadURLPath := strings.TrimSpace(os.Getenv("UPLOAD_URL_PATH"))
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	return AppConfig{
		ListenAddr:  listenAddr,
		Port:        port,
		GinMode:     ginMode,
		LogMode:     envOr("LOG_MODE", ginMode),
		AutoMigrate: envBool("AUTO_MIGRATE", false),

		DatabaseDriver: databaseDriver,
		DatabaseURL:    databaseURL,
		DatabasePath:   databasePath,

		SessionSecret: sessionSecret,

		BlobBackend:   blobBackend,
		UploadDir:     uploadDir,
		UploadURLPath: uploadURLPath,
		MaxUploadSize: envInt64("MAX_UPLOAD_SIZE", 20<<20),
		S3: S3Config{
			Endpoint:      envOr("S3_ENDPOINT", "localhost:9000"),
			AccessKey:     envOr("S3_ACCESS_KEY", ""),
			SecretKey:     envOr("S3_SECRET_KEY", ""),
			Bucket:        envOr("S3_BUCKET", "photofolio"),
			Region:        envOr("S3_REGION", "us-east-1"),
			UseSSL:        envBool("S3_USE_SSL", false),
			PublicBaseURL: strings.TrimRight(envOr("S3_PUBLIC_BASE_URL", ""), "/"),
		},

		GoogleClientID:     envOr("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envOr("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", fmt.Sprintf("http://localhost:%s/auth/callback", port)),
		AdminEmails:        envList("ADMIN_EMAILS"),

		AllowedOrigins:  envList("ALLOWED_ORIGINS"),
		RedisURL:        envOr("REDIS_URL", ""),
		ProjectsListTTL: envDuration("PROJECTS_LIST_TTL", 5*time.Minute),
	}
}

// Validate 检查启动前必须满足的配置。release 模式下会话密钥不能为空或沿用开发默认值，
// 否则任何人都能签出管理员会话。
func (c AppConfig) Validate() error {
	if c.GinMode != "release" {
		return nil
	}
	secret := strings.TrimSpace(c.SessionSecret)
	if secret == "" || secret == DevSessionSecret {
		return ErrInsecureSessionSecret
	}
	return nil
}

// UsesDevSessionSecret 报告是否在使用开发默认密钥。
func (c AppConfig) UsesDevSessionSecret() bool {
	return strings.TrimSpace(c.SessionSecret) == DevSessionSecret
}

// DatabaseDSN 返回当前驱动对应的连接串。
func (c AppConfig) DatabaseDSN() string {
	if c.DatabaseDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// envList 解析逗号分隔的列表，忽略空项。
func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
