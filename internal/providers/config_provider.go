package providers

import (
	"dashgate/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "DASHGATE_LOG_LEVEL")
	v.BindEnv("gateway.baseUrl", "DASHGATE_BASE_URL")
	v.BindEnv("gateway.token", "DASHGATE_TOKEN")
	v.BindEnv("cache.enabled", "DASHGATE_CACHE_ENABLED")
	v.BindEnv("cache.ttl", "DASHGATE_CACHE_TTL")
	v.BindEnv("storage.driver", "DASHGATE_STORAGE_DRIVER")
	v.BindEnv("storage.redisAddr", "DASHGATE_REDIS_ADDR")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "DashGate"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.size", 32)
	v.SetDefault("storage.tabTTL", 12*time.Hour)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("pagination.pageSize", 10)
	v.SetDefault("pagination.windowSize", 5)
	v.SetDefault("pagination.listField", "list")
	v.SetDefault("pagination.totalField", "total")
	v.SetDefault("conversation.sellerIndicators", []string{"旗舰店", "专卖店", "专营店", "官方", "客服", "店小二", "shop", "store", "official"})
	v.SetDefault("conversation.productLinkTypes", []string{"item", "goods", "product_link"})
	v.SetDefault("conversation.productLinkPrefix", []string{"我要咨询的商品：", "我想咨询这个商品：", "I want to ask about this item:"})
}
