package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/disco/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 2 * time.Hour,
		usage:        "Inactivity after which a room is closed",
	}
	reaperInterval = configVar[time.Duration]{
		envKey:       "SERVER_REAPER_INTERVAL",
		flagKey:      "reaper-interval",
		defaultValue: 30 * time.Minute,
		usage:        "How often inactive rooms are swept",
	}
	roomCodeLength = configVar[int]{
		envKey:       "SERVER_ROOM_CODE_LENGTH",
		flagKey:      "room-code-length",
		defaultValue: 6,
		usage:        "Length of room codes",
	}
	roomCodeAlphabet = configVar[string]{
		envKey:       "SERVER_ROOM_CODE_ALPHABET",
		flagKey:      "room-code-alphabet",
		defaultValue: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
		usage:        "Characters room codes are drawn from",
	}
	sendQueueSize = configVar[int]{
		envKey:       "SERVER_SEND_QUEUE_SIZE",
		flagKey:      "send-queue-size",
		defaultValue: 64,
		usage:        "Outbound messages buffered per connection",
	}
	allowedOrigins = configVar[string]{
		envKey:       "SERVER_ALLOWED_ORIGINS",
		flagKey:      "allowed-origins",
		defaultValue: "",
		usage:        "Comma separated origins allowed to connect, empty allows any",
	}
	redisEnabled = configVar[bool]{
		envKey:       "REDIS_ENABLED",
		flagKey:      "redis-enabled",
		defaultValue: false,
		usage:        "Publish room lifecycle events to Redis",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
	redisChannel = configVar[string]{
		envKey:       "REDIS_CHANNEL",
		flagKey:      "redis-channel",
		defaultValue: "disco:rooms",
		usage:        "Redis channel for room lifecycle events",
	}
)

func (v configVar[T]) bind() {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Duration(roomTTL.flagKey, roomTTL.defaultValue, roomTTL.usage)
	pflag.Duration(reaperInterval.flagKey, reaperInterval.defaultValue, reaperInterval.usage)
	pflag.Int(roomCodeLength.flagKey, roomCodeLength.defaultValue, roomCodeLength.usage)
	pflag.String(roomCodeAlphabet.flagKey, roomCodeAlphabet.defaultValue, roomCodeAlphabet.usage)
	pflag.Int(sendQueueSize.flagKey, sendQueueSize.defaultValue, sendQueueSize.usage)
	pflag.String(allowedOrigins.flagKey, allowedOrigins.defaultValue, allowedOrigins.usage)
	pflag.Bool(redisEnabled.flagKey, redisEnabled.defaultValue, redisEnabled.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.String(redisChannel.flagKey, redisChannel.defaultValue, redisChannel.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	host.bind()
	port.bind()
	logLevel.bind()
	roomTTL.bind()
	reaperInterval.bind()
	roomCodeLength.bind()
	roomCodeAlphabet.bind()
	sendQueueSize.bind()
	allowedOrigins.bind()
	redisEnabled.bind()
	redisHost.bind()
	redisPort.bind()
	redisPassword.bind()
	redisChannel.bind()

	config := &app.AppConfig{
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		RoomTTL:          viper.GetDuration(roomTTL.flagKey),
		ReaperInterval:   viper.GetDuration(reaperInterval.flagKey),
		RoomCodeLength:   viper.GetInt(roomCodeLength.flagKey),
		RoomCodeAlphabet: viper.GetString(roomCodeAlphabet.flagKey),
		SendQueueSize:    viper.GetInt(sendQueueSize.flagKey),
		AllowedOrigins:   splitList(viper.GetString(allowedOrigins.flagKey)),
		RedisEnabled:     viper.GetBool(redisEnabled.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
		RedisChannel:     viper.GetString(redisChannel.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
