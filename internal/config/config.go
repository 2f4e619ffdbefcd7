package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token          string
		ProxyURL       string        `mapstructure:"proxy_url"`
		OwnerID        int64         `mapstructure:"owner_id"`
		PollTimeout    time.Duration `mapstructure:"poll_timeout"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		Workers        int
		Debug          bool
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Database struct {
		Driver string
		DSN    string
	} `mapstructure:"database"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Dialog struct {
		Store string
		TTL   time.Duration
	} `mapstructure:"dialog"`

	Feedback struct {
		DailyLimit int    `mapstructure:"daily_limit"`
		ResetAt    string `mapstructure:"reset_at"`
	} `mapstructure:"feedback"`

	Export struct {
		Dir     string
		PDFFont string `mapstructure:"pdf_font"`
	} `mapstructure:"export"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "Europe/Moscow")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.proxy_url", "")
	v.SetDefault("telegram.owner_id", 0)
	v.SetDefault("telegram.poll_timeout", 30*time.Second)
	v.SetDefault("telegram.request_timeout", 60*time.Second)
	v.SetDefault("telegram.workers", 4)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("metrics.enabled", true)
	// пусто: выбирается по database.driver в applyDerived
	v.SetDefault("dialog.store", "")
	v.SetDefault("dialog.ttl", time.Duration(0))
	v.SetDefault("feedback.daily_limit", 3)
	v.SetDefault("feedback.reset_at", "04:00")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.pdf_font", "")
}

// Load reads .env (if present), the YAML file at path and APP_* overrides,
// e.g. APP_TELEGRAM_TOKEN for telegram.token.
func Load(path string) (Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	c.applyDerived()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// applyDerived fills defaults that depend on other keys.
func (c *Config) applyDerived() {
	if c.Dialog.Store == "" {
		c.Dialog.Store = "postgres"
		if c.Database.Driver == "sqlite" {
			c.Dialog.Store = "memory"
		}
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: want postgres or sqlite", c.Database.Driver))
	}
	switch c.Dialog.Store {
	case "memory":
	case "postgres":
		if c.Database.Driver != "postgres" {
			errs = append(errs, errors.New("dialog.store postgres needs database.driver postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("dialog.store %q: want memory or postgres", c.Dialog.Store))
	}
	if c.Telegram.Workers < 1 {
		errs = append(errs, errors.New("telegram.workers must be positive"))
	}
	if c.Telegram.PollTimeout >= c.Telegram.RequestTimeout {
		errs = append(errs, errors.New("telegram.poll_timeout must be shorter than telegram.request_timeout"))
	}
	if c.Feedback.DailyLimit < 0 {
		errs = append(errs, errors.New("feedback.daily_limit must not be negative"))
	}
	if _, err := time.Parse("15:04", c.Feedback.ResetAt); err != nil {
		errs = append(errs, fmt.Errorf("feedback.reset_at %q: want HH:MM", c.Feedback.ResetAt))
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("app.timezone: %w", err))
	}
	return errors.Join(errs...)
}
