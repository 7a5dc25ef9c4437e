package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"machinethread/controller/application"
	"machinethread/utils"
)

const usage = "controller [<count> <host> <port>]"

const (
	transportTCP       = "tcp"
	transportWebSocket = "ws"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type config struct {
	Host          string
	Port          string
	Count         int
	Name          string
	Transport     string
	WSPath        string
	HealthAddr    string
	LogLevel      slog.Level
	RetryInterval time.Duration
	Pilot         application.PilotConfig
}

// loadConfig は環境変数から設定を読み、位置引数 <count> <host> <port> があればそれで上書きします。
func loadConfig(args []string) (config, error) {
	cfg := config{
		Host:       utils.GetEnvDefault("HOST", "localhost"),
		Port:       utils.GetEnvDefault("PORT", "2016"),
		Name:       utils.GetEnvDefault("CONTROLLER_NAME", "The Machine Thread"),
		Transport:  strings.ToLower(utils.GetEnvDefault("TRANSPORT", transportTCP)),
		WSPath:     utils.GetEnvDefault("WS_PATH", "/ws"),
		HealthAddr: utils.GetEnvDefault("HEALTH_ADDR", ""),
		Pilot:      application.DefaultPilotConfig(),
	}

	var err error
	if cfg.Count, err = utils.GetEnvInt("CONTROLLER_COUNT", 1); err != nil {
		return cfg, fmt.Errorf("%w: CONTROLLER_COUNT: %w", ErrInvalidConfig, err)
	}
	retry, err := utils.GetEnvInt("RETRY_INTERVAL", 3)
	if err != nil {
		return cfg, fmt.Errorf("%w: RETRY_INTERVAL: %w", ErrInvalidConfig, err)
	}
	cfg.RetryInterval = time.Duration(retry) * time.Second
	if err := cfg.LogLevel.UnmarshalText([]byte(utils.GetEnvDefault("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("%w: LOG_LEVEL: %w", ErrInvalidConfig, err)
	}
	if cfg.Pilot.Pipeline.LegacyXRanking, err = utils.GetEnvBool("LEGACY_X_RANKING", false); err != nil {
		return cfg, fmt.Errorf("%w: LEGACY_X_RANKING: %w", ErrInvalidConfig, err)
	}
	if cfg.Pilot.Pipeline.MaxEngagementRange, err = utils.GetEnvFloat("MAX_ENGAGEMENT_RANGE", cfg.Pilot.Pipeline.MaxEngagementRange); err != nil {
		return cfg, fmt.Errorf("%w: MAX_ENGAGEMENT_RANGE: %w", ErrInvalidConfig, err)
	}
	if cfg.Pilot.ForgetTicks, err = utils.GetEnvInt("FORGET_TICKS", cfg.Pilot.ForgetTicks); err != nil {
		return cfg, fmt.Errorf("%w: FORGET_TICKS: %w", ErrInvalidConfig, err)
	}

	switch len(args) {
	case 0:
	case 3:
		if cfg.Count, err = strconv.Atoi(args[0]); err != nil {
			return cfg, fmt.Errorf("%w: count: %w", ErrInvalidConfig, err)
		}
		cfg.Host = args[1]
		cfg.Port = args[2]
	default:
		return cfg, fmt.Errorf("%w: usage: %s", ErrInvalidConfig, usage)
	}

	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.Count < 1 {
		return fmt.Errorf("%w: controller count must be positive, got %d", ErrInvalidConfig, c.Count)
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: invalid port %q", ErrInvalidConfig, c.Port)
	}
	if c.Transport != transportTCP && c.Transport != transportWebSocket {
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("%w: negative retry interval", ErrInvalidConfig)
	}
	if c.Pilot.ForgetTicks < 1 {
		return fmt.Errorf("%w: FORGET_TICKS must be positive", ErrInvalidConfig)
	}
	return nil
}

// ControllerName は i 番目（1始まり）のコントローラの名前です。
func (c config) ControllerName(i int) string {
	return fmt.Sprintf("%s_%d", c.Name, i)
}

func (c config) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c config) URL() string {
	return "ws://" + c.Address() + c.WSPath
}
