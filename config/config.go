package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息。
// 加载后不再修改，通过构造函数注入各组件。
type Config struct {
	Port        string
	JWTSecret   string
	LogLevel    string
	LogPath     string
	FrontendURL string
	BackendURL  string

	MongoURI      string
	MongoDatabase string

	// 对象存储后端：gcs、s3 或 local
	StorageBackend     string
	GCSBucket          string
	GCSCredentialsFile string
	S3Region           string
	S3Bucket           string
	LocalStoragePath   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitPerMinute int
	Debug              bool
}

// Load 从 .env 文件和环境变量中读取配置
func Load() (*Config, error) {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPath:     getEnv("LOG_PATH", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8080"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "pethub"),

		StorageBackend:     getEnv("STORAGE_BACKEND", "local"),
		GCSBucket:          getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		S3Region:           getEnv("S3_REGION", "us-west-2"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./uploads"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		Debug:              getEnvAsBool("DEBUG", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET 未设置")
	}
	switch c.StorageBackend {
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET_NAME 未设置")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET 未设置")
		}
	case "local":
	default:
		return fmt.Errorf("未知的存储后端: %s", c.StorageBackend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}
