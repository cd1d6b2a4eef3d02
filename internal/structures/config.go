package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string `short:"c" long:"config" description:"Path to YAML config file" default:"config/config.yml"`
	DebugMode  bool   `short:"d" long:"debug" description:"Enable debug mode"`
}

type Route struct {
	Method  string
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
	// AllowedOrigins is passed to the CORS middleware.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type GatewayConfig struct {
	BaseURL string        `yaml:"baseUrl" validate:"required|fullUrl"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" validate:"in:memory,redis"`
	// Size is the in-memory store size in megabytes.
	Size      int           `yaml:"size"`
	Compress  bool          `yaml:"compress"`
	TabTTL    time.Duration `yaml:"tabTTL"`
	RedisAddr string        `yaml:"redisAddr"`
	RedisDB   int           `yaml:"redisDB"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type PaginationConfig struct {
	PageSize   int    `yaml:"pageSize" validate:"required|min:1"`
	WindowSize int    `yaml:"windowSize"`
	ListField  string `yaml:"listField"`
	TotalField string `yaml:"totalField"`
}

type ConversationConfig struct {
	SellerIndicators  []string `yaml:"sellerIndicators"`
	ProductLinkTypes  []string `yaml:"productLinkTypes"`
	ProductLinkPrefix []string `yaml:"productLinkPrefix"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName      string
	Debug        bool
	Path         string
	WebServer    Server             `yaml:"webServer"`
	Gateway      GatewayConfig      `yaml:"gateway"`
	Logger       LoggerConfig       `yaml:"logger"`
	Storage      StorageConfig      `yaml:"storage"`
	Cache        CacheConfig        `yaml:"cache"`
	Pagination   PaginationConfig   `yaml:"pagination"`
	Conversation ConversationConfig `yaml:"conversation"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}
