package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel      string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	SocketPort    string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"3000"`
	HTTPPort      string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	AllowedOrigin string `yaml:"allowed-origin" env:"ALLOWED_ORIGIN" env-default:"http://localhost:5173"`
	MaxNameLength int    `yaml:"max-name-length" env:"MAX_NAME_LENGTH" env-default:"32"`
	SendBuffer    int    `yaml:"send-buffer" env:"SEND_BUFFER" env-default:"16"`
	Redis         Redis  `yaml:"redis"`
}

// Redis is only dialed when Enabled; it carries finished game results.
type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"tictactoe:results"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
