package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort      string  `mapstructure:"SERVER_PORT"`
	EngineRPCAddr   string  `mapstructure:"ENGINE_RPC_ADDR"`
	EngineRPCPort   string  `mapstructure:"ENGINE_RPC_PORT"`
	EngineBotUrl    string  `mapstructure:"ENGINE_BOT_URL"`
	GtpCommand      string  `mapstructure:"GTP_COMMAND"`
	RedisUrl        string  `mapstructure:"REDIS_URL"`
	MongoUri        string  `mapstructure:"MONGO_URI"`
	MongoDatabase   string  `mapstructure:"MONGO_DATABASE"`
	IsLocalCors     bool    `mapstructure:"LOCAL_CORS"`
	PageLimitGames  int     `mapstructure:"PAGE_LIMIT_GAMES"`
	BoardSize       int     `mapstructure:"BOARD_SIZE"`
	Komi            float64 `mapstructure:"KOMI"`
	MaxMoves        int     `mapstructure:"MAX_MOVES"`
	EngineWorkers   int     `mapstructure:"ENGINE_WORKERS"`
	TimeControl     string  `mapstructure:"TIME_CONTROL"`
	GameTimeoutSecs int     `mapstructure:"GAME_TIMEOUT_SECS"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENGINE_RPC_ADDR", "")
	v.SetDefault("ENGINE_RPC_PORT", "8082")
	v.SetDefault("ENGINE_BOT_URL", "")
	v.SetDefault("GTP_COMMAND", "gnugo --mode gtp")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "go_arena")
	v.SetDefault("LOCAL_CORS", false)
	v.SetDefault("PAGE_LIMIT_GAMES", 20)
	v.SetDefault("BOARD_SIZE", 9)
	v.SetDefault("KOMI", 7.5)
	v.SetDefault("MAX_MOVES", 0)
	v.SetDefault("ENGINE_WORKERS", 2)
	v.SetDefault("TIME_CONTROL", "=1000")
	v.SetDefault("GAME_TIMEOUT_SECS", 600)
}

// Setup reads the .env file at cfgPath. A missing file is not an error:
// defaults and environment variables are used instead.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	v.SetConfigFile(cfgPath)
	v.SetConfigType("env")

	err := v.ReadInConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
