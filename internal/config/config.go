package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/weiawesome/wes-io-live/livechat/pkg/config"
	"github.com/weiawesome/wes-io-live/livechat/pkg/jwt"
	"github.com/weiawesome/wes-io-live/livechat/pkg/log"
)

const envPrefix = "LIVECHAT"

type Config struct {
	Chat     ChatConfig
	Identity IdentityConfig
	Redis    RedisConfig
	UI       UIConfig
	Log      log.Config
}

type ChatConfig struct {
	Endpoint       string
	Transport      string        // "websocket" or "tcp"
	Host           string        // STOMP virtual host
	InboundPrefix  string        `mapstructure:"inbound_prefix"`
	OutboundPrefix string        `mapstructure:"outbound_prefix"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	HeartbeatSend  time.Duration `mapstructure:"heartbeat_send"`
	HeartbeatRecv  time.Duration `mapstructure:"heartbeat_recv"`
	Reconnect      ReconnectConfig
	SendRate       float64 `mapstructure:"send_rate"`
	SendBurst      int     `mapstructure:"send_burst"`
}

type ReconnectConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64
	MaxAttempts     uint `mapstructure:"max_attempts"`
}

type IdentityConfig struct {
	Mode        string // "static" or "token"
	Fixture     string
	Token       string
	RoomID      string        `mapstructure:"room_id"`
	RoomService string        `mapstructure:"room_service"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	JWT         jwt.VerifierConfig
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

type UIConfig struct {
	TimestampMode string `mapstructure:"timestamp_mode"`
	SupportAmount string `mapstructure:"support_amount"`
}

// Load reads config from file (explicit path or ./config/config.yaml) and env.
func Load(file string) (*Config, error) {
	v, err := pkgconfig.Load(pkgconfig.Source{
		File:      file,
		Dir:       "./config",
		Name:      "config",
		EnvPrefix: envPrefix,
	})
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("chat.endpoint", "ws://localhost:8080/chat/websocket")
	v.SetDefault("chat.transport", "websocket")
	v.SetDefault("chat.host", "/")
	v.SetDefault("chat.inbound_prefix", "/stream")
	v.SetDefault("chat.outbound_prefix", "/sendChat")
	v.SetDefault("chat.connect_timeout", "10s")
	v.SetDefault("chat.heartbeat_send", "10s")
	v.SetDefault("chat.heartbeat_recv", "10s")
	v.SetDefault("chat.reconnect.initial_interval", "500ms")
	v.SetDefault("chat.reconnect.max_interval", "15s")
	v.SetDefault("chat.reconnect.multiplier", 2.0)
	v.SetDefault("chat.reconnect.max_attempts", 8)
	v.SetDefault("chat.send_rate", 1.0)
	v.SetDefault("chat.send_burst", 5)
	v.SetDefault("identity.mode", "static")
	v.SetDefault("identity.fixture", "./config/identity.json")
	v.SetDefault("identity.room_service", "http://localhost:8085")
	v.SetDefault("identity.http_timeout", "10s")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "livechat:streamer")
	v.SetDefault("redis.ttl", "5m")
	v.SetDefault("ui.timestamp_mode", "receipt")
	v.SetDefault("ui.support_amount", "100,000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "livechat")
	v.SetDefault("log.file", "./logs/livechat.log")

	// Override from environment
	v.BindEnv("chat.endpoint", "CHAT_ENDPOINT")
	v.BindEnv("identity.token", "ACCESS_TOKEN")
	v.BindEnv("identity.room_id", "ROOM_ID")
	v.BindEnv("identity.jwt.secret", "JWT_SECRET")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Chat.ConnectTimeout = parseDuration(v, "chat.connect_timeout", 10*time.Second)
	cfg.Chat.HeartbeatSend = parseDuration(v, "chat.heartbeat_send", 10*time.Second)
	cfg.Chat.HeartbeatRecv = parseDuration(v, "chat.heartbeat_recv", 10*time.Second)
	cfg.Chat.Reconnect.InitialInterval = parseDuration(v, "chat.reconnect.initial_interval", 500*time.Millisecond)
	cfg.Chat.Reconnect.MaxInterval = parseDuration(v, "chat.reconnect.max_interval", 15*time.Second)
	cfg.Identity.HTTPTimeout = parseDuration(v, "identity.http_timeout", 10*time.Second)
	cfg.Redis.TTL = parseDuration(v, "redis.ttl", 5*time.Minute)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
