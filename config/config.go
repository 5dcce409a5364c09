// Package config 讀取 slipdesk 服務的設定：YAML 檔（可選）加上環境變數覆寫。
package config

import (
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/server/logger"
)

type Config struct {
	Addr     string        `yaml:"addr" env:"SLIPDESK_ADDR" env-default:":5808" env-description:"HTTP listen address"`
	LogMode  string        `yaml:"log_mode" env:"SLIPDESK_LOG_MODE" env-default:"dev" env-description:"dev, prod or silence"`
	DevPanel bool          `yaml:"dev_panel" env:"SLIPDESK_DEV_PANEL" env-default:"true" env-description:"serve the input panel at /dev"`
	Timeout  time.Duration `yaml:"timeout" env:"SLIPDESK_TIMEOUT" env-default:"5s" env-description:"per-request backend deadline"`

	Backend Backend `yaml:"backend"`
	History History `yaml:"history"`
	Catalog Catalog `yaml:"catalog"`
}

// Backend 是投注紀錄後端；URL 空字串時使用記憶體後端（只適合開發）。
type Backend struct {
	URL     string        `yaml:"url" env:"SLIPDESK_BACKEND_URL" env-description:"base URL of the records backend"`
	Token   string        `yaml:"token" env:"SLIPDESK_BACKEND_TOKEN" env-description:"bearer token"`
	Timeout time.Duration `yaml:"timeout" env:"SLIPDESK_BACKEND_TIMEOUT" env-default:"10s" env-description:"HTTP client timeout"`
}

// History 是本地 journal；DSN 空字串時停用。
type History struct {
	DSN string `yaml:"dsn" env:"SLIPDESK_HISTORY_DSN" env-default:"slipdesk.db" env-description:"sqlite DSN for the local journal, empty to disable"`
}

type Catalog struct {
	Dir     string `yaml:"dir" env:"SLIPDESK_CATALOG_DIR" env-description:"directory of type seed files (yaml/json), replaces the demo seeds"`
	Refresh bool   `yaml:"refresh" env:"SLIPDESK_REFRESH_TYPES" env-default:"true" env-description:"refresh types from the backend at startup"`
}

// Load 讀取 path（可為空）再套用環境變數，最後驗證。
func Load(path string) (*Config, error) {
	cfg := new(Config)
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, errs.Wrap(err, "load config error")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logger.ParseLogMode(c.LogMode); err != nil {
		return err
	}
	if c.Timeout <= 0 || c.Backend.Timeout <= 0 {
		return errs.NewWarn("timeouts must be > 0")
	}
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errs.Warnf("invalid backend url %q", c.Backend.URL)
		}
	}
	return nil
}

// Mode 回傳已驗證過的 LogMode
func (c *Config) Mode() logger.LogMode {
	m, _ := logger.ParseLogMode(c.LogMode)
	return m
}

// Usage 回傳所有環境變數的說明，給 -h 使用。
func Usage() string {
	header := "Environment variables:"
	s, err := cleanenv.GetDescription(new(Config), &header)
	if err != nil {
		return ""
	}
	return s
}
