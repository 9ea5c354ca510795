package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type IMAPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
	Mailbox  string `yaml:"mailbox"`
}

type WatchConfig struct {
	Sender          string `yaml:"sender"`
	Subject         string `yaml:"subject"`
	IntervalSeconds int    `yaml:"interval_seconds"`
	RulesFile       string `yaml:"rules_file"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type MQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type APIConfig struct {
	Key string `yaml:"key"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	IMAP     IMAPConfig     `yaml:"imap"`
	Watch    WatchConfig    `yaml:"watch"`
	Telegram TelegramConfig `yaml:"telegram"`
	MQ       MQConfig       `yaml:"mq"`
	API      APIConfig      `yaml:"api"`
}

// Load reads config.yaml if present, then .env, then environment variables.
// Later sources win. Both files are optional so a container can run on
// environment variables alone.
func Load() *Config {
	cfg := defaults()

	if f, err := os.Open("config.yaml"); err == nil {
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(cfg); err != nil {
			f.Close()
			log.Fatalf("failed to decode config.yaml: %v", err)
		}
		f.Close()
	}

	// .env for local development
	_ = godotenv.Load()

	overrideFromEnv(cfg)

	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: ":3000"},
		IMAP: IMAPConfig{
			Port:    993,
			TLS:     true,
			Mailbox: "INBOX",
		},
		Watch: WatchConfig{
			Sender:          "no-reply@cake.vn",
			Subject:         "[CAKE] Thông báo giao dịch thành công",
			IntervalSeconds: 15,
		},
		MQ: MQConfig{
			Exchange:   "cakewatch.alerts",
			RoutingKey: "transaction.credit",
		},
	}
}

func overrideFromEnv(cfg *Config) {
	// Server
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	// IMAP
	if host := os.Getenv("IMAP_HOST"); host != "" {
		cfg.IMAP.Host = host
	}
	if port := os.Getenv("IMAP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.IMAP.Port = p
		}
	}
	if user := os.Getenv("IMAP_USER"); user != "" {
		cfg.IMAP.Username = user
	}
	if password := os.Getenv("IMAP_PASSWORD"); password != "" {
		cfg.IMAP.Password = password
	}
	if tls := os.Getenv("IMAP_TLS"); tls != "" {
		if b, err := strconv.ParseBool(tls); err == nil {
			cfg.IMAP.TLS = b
		}
	}
	if mailbox := os.Getenv("IMAP_MAILBOX"); mailbox != "" {
		cfg.IMAP.Mailbox = mailbox
	}

	// Watch
	if sender := os.Getenv("WATCH_SENDER"); sender != "" {
		cfg.Watch.Sender = sender
	}
	if subject := os.Getenv("WATCH_SUBJECT"); subject != "" {
		cfg.Watch.Subject = subject
	}
	if interval := os.Getenv("CHECK_INTERVAL_SECONDS"); interval != "" {
		if n, err := strconv.Atoi(interval); err == nil && n > 0 {
			cfg.Watch.IntervalSeconds = n
		}
	}
	if rules := os.Getenv("RULES_FILE"); rules != "" {
		cfg.Watch.RulesFile = rules
	}

	// Telegram
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.Telegram.ChatID = chatID
	}

	// MQ
	if url := os.Getenv("AMQP_URL"); url != "" {
		cfg.MQ.URL = url
	}
	if exchange := os.Getenv("AMQP_EXCHANGE"); exchange != "" {
		cfg.MQ.Exchange = exchange
	}
	if key := os.Getenv("AMQP_ROUTING_KEY"); key != "" {
		cfg.MQ.RoutingKey = key
	}

	// API
	if key := os.Getenv("API_KEY"); key != "" {
		cfg.API.Key = key
	}
}
