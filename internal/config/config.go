package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Tokens
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration

	// Media storage (S3-compatible)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	// Public base URL assets are served from, e.g. the bucket's CDN host.
	S3PublicURL string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "streamhive")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("ACCESS_TOKEN_SECRET", "")
	viper.SetDefault("ACCESS_TOKEN_EXPIRY", "15m")
	viper.SetDefault("REFRESH_TOKEN_SECRET", "")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY", "240h")

	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_BUCKET", "streamhive-media")
	viper.SetDefault("S3_ACCESS_KEY", "")
	viper.SetDefault("S3_SECRET_KEY", "")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_PUBLIC_URL", "")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("CORS_ORIGINS", "*")

	viper.AutomaticEnv()

	return &Config{
		DBHost:     viper.GetString("DB_HOST"),
		DBPort:     viper.GetString("DB_PORT"),
		DBUser:     viper.GetString("DB_USER"),
		DBPassword: viper.GetString("DB_PASSWORD"),
		DBName:     viper.GetString("DB_NAME"),
		DBSSLMode:  viper.GetString("DB_SSLMODE"),

		AccessTokenSecret:  viper.GetString("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:  parseDuration(viper.GetString("ACCESS_TOKEN_EXPIRY"), 15*time.Minute),
		RefreshTokenSecret: viper.GetString("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiry: parseDuration(viper.GetString("REFRESH_TOKEN_EXPIRY"), 240*time.Hour),

		S3Region:    viper.GetString("S3_REGION"),
		S3Bucket:    viper.GetString("S3_BUCKET"),
		S3AccessKey: viper.GetString("S3_ACCESS_KEY"),
		S3SecretKey: viper.GetString("S3_SECRET_KEY"),
		S3Endpoint:  viper.GetString("S3_ENDPOINT"),
		S3PublicURL: viper.GetString("S3_PUBLIC_URL"),

		Port:        viper.GetString("PORT"),
		CORSOrigins: viper.GetString("CORS_ORIGINS"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
