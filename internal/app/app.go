package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/disco/internal/controller"
	"github.com/sharetube/disco/internal/repository/connection/inmemory"
	roomInmemory "github.com/sharetube/disco/internal/repository/room/inmemory"
	"github.com/sharetube/disco/internal/repository/roomevents"
	roomEventsRedis "github.com/sharetube/disco/internal/repository/roomevents/redis"
	wssender "github.com/sharetube/disco/internal/repository/ws-sender"
	"github.com/sharetube/disco/internal/service/room"
	"github.com/sharetube/disco/pkg/ctxlogger"
	"github.com/sharetube/disco/pkg/randstr"
	"github.com/sharetube/disco/pkg/redisclient"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second

	eventQueueSize = 256
)

type AppConfig struct {
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	LogLevel         string        `json:"log_level"`
	RoomTTL          time.Duration `json:"room_ttl"`
	ReaperInterval   time.Duration `json:"reaper_interval"`
	RoomCodeLength   int           `json:"room_code_length"`
	RoomCodeAlphabet string        `json:"room_code_alphabet"`
	SendQueueSize    int           `json:"send_queue_size"`
	AllowedOrigins   []string      `json:"allowed_origins"`
	RedisEnabled     bool          `json:"redis_enabled"`
	RedisHost        string        `json:"redis_host"`
	RedisPort        int           `json:"redis_port"`
	RedisPassword    string        `json:"-"`
	RedisChannel     string        `json:"redis_channel"`
}

func (cfg *AppConfig) Validate() error {
	var errs []error
	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 0 and 65535"))
	}
	if cfg.RoomTTL <= 0 {
		errs = append(errs, fmt.Errorf("room ttl must be positive"))
	}
	if cfg.ReaperInterval <= 0 {
		errs = append(errs, fmt.Errorf("reaper interval must be positive"))
	}
	if cfg.RoomCodeLength < 1 {
		errs = append(errs, fmt.Errorf("room code length must be greater than 0"))
	}
	if cfg.RoomCodeAlphabet == "" {
		errs = append(errs, fmt.Errorf("room code alphabet must not be empty"))
	}
	if cfg.SendQueueSize < 1 {
		errs = append(errs, fmt.Errorf("send queue size must be greater than 0"))
	}
	if cfg.RedisEnabled && cfg.RedisChannel == "" {
		errs = append(errs, fmt.Errorf("redis channel must not be empty"))
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func parseLevel(level string) (slog.Level, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return logLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return logLevel, nil
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}),
	}

	return slog.New(&h)
}

// App is the wired server. Background workers live as long as the context
// passed to New.
type App struct {
	handler http.Handler
	closers []func() error
}

func New(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (*App, error) {
	a := &App{}

	var publisher interface {
		Publish(context.Context, roomevents.Event)
	}
	if cfg.RedisEnabled {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		a.closers = append(a.closers, rc.Close)

		events := roomEventsRedis.NewPublisher(rc, cfg.RedisChannel, eventQueueSize, logger)
		go events.Run(ctx)
		publisher = events
	}

	connectionRepo := inmemory.NewRepo(logger)
	roomRepo := roomInmemory.NewRepo(connectionRepo, randstr.New([]byte(cfg.RoomCodeAlphabet)), &roomInmemory.Config{
		CodeLength: cfg.RoomCodeLength,
	}, logger)
	sender := wssender.NewRepo(&wssender.Config{
		QueueSize:  cfg.SendQueueSize,
		PingPeriod: pingPeriod,
		WriteWait:  writeWait,
	}, logger)

	roomService := room.NewService(roomRepo, connectionRepo, sender, publisher, &room.Config{
		RoomTTL: cfg.RoomTTL,
	}, logger)
	go roomService.RunReaper(ctx, cfg.ReaperInterval)

	a.handler = controller.NewController(roomService, sender, &controller.Config{
		AllowedOrigins:   cfg.AllowedOrigins,
		PongWait:         pongWait,
		RoomCodeLength:   cfg.RoomCodeLength,
		RoomCodeAlphabet: cfg.RoomCodeAlphabet,
	}, logger).GetMux()

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel, err := parseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	logger := NewLogger(os.Stdout, logLevel)

	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	a, err := New(serverCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: a.Handler()}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(context.Background(), 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
