package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type RotationConfig struct {
	Env          string `yaml:"env"`
	HTTPServer   `yaml:"http_server"`
	RotationDB   `yaml:"rotation_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	WBApi        `yaml:"wb-api"`
	Rotation     `yaml:"rotation"`
	Telegram     `yaml:"telegram"`
	Accounts     []AccountToken `yaml:"accounts"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type RotationDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	EventsTopic string `yaml:"events_topic" env-default:"rotation-events"`
	JobsTopic   string `yaml:"jobs_topic" env-default:"rotation-jobs"`
	GroupID     string `yaml:"group_id" env-default:"rotation-service"`
}

type WBApi struct {
	AdvertBaseURL    string        `yaml:"advert_base_url" env-default:"https://advert-api.wildberries.ru"`
	AnalyticsBaseURL string        `yaml:"analytics_base_url" env-default:"https://seller-analytics-api.wildberries.ru"`
	ContentBaseURL   string        `yaml:"content_base_url" env-default:"https://content-api.wildberries.ru"`
	RequestTimeout   time.Duration `yaml:"request_timeout" env-default:"15s"`
	MaxAttempts      int           `yaml:"max_attempts" env-default:"3"`
	BackoffBase      time.Duration `yaml:"backoff_base" env-default:"500ms"`
}

type Rotation struct {
	CheckInterval         time.Duration `yaml:"check_interval" env-default:"15m"`
	StatsInterval         time.Duration `yaml:"stats_interval" env-default:"1h"`
	CallPause             time.Duration `yaml:"call_pause" env-default:"2s"`
	DefaultViewsPerStep   int64         `yaml:"default_views_per_step" env-default:"1500"`
	DefaultTopUpThreshold float64       `yaml:"default_top_up_threshold" env-default:"1000"`
	DefaultTopUpAmount    float64       `yaml:"default_top_up_amount" env-default:"5000"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token" env:"TG_BOT_TOKEN"`
	ChatID   string `yaml:"chat_id" env:"TG_CHAT_ID"`
}

// AccountToken maps an internal account id to its marketplace API token
type AccountToken struct {
	AccountID string `yaml:"account_id"`
	Token     string `yaml:"token"`
}

func MustLoad() *RotationConfig {

	// Processing env config variable and file
	configPath := os.Getenv("ROTATION_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("ROTATION_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg RotationConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
