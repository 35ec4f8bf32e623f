package main

import "github.com/spf13/viper"

const version = "1.0.0"

type Config struct {
	Port        string
	Environment string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	RabbitMQ struct {
		Host     string
		Port     string
		User     string
		Password string
	}

	Limiter struct {
		RPS     float64
		Burst   int
		Enabled bool
	}
}

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("env")

	viper.SetDefault("PORT", ":4000")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LIMITER_RPS", 2.0)
	viper.SetDefault("LIMITER_BURST", 4)
	viper.SetDefault("LIMITER_ENABLED", true)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	config.Port = viper.GetString("PORT")
	config.Environment = viper.GetString("ENVIRONMENT")

	config.DB.Host = viper.GetString("POSTGRES_HOST")
	config.DB.Port = viper.GetString("POSTGRES_PORT")
	config.DB.User = viper.GetString("POSTGRES_USER")
	config.DB.Password = viper.GetString("POSTGRES_PASSWORD")
	config.DB.Name = viper.GetString("POSTGRES_DB")

	config.RabbitMQ.Host = viper.GetString("RABBITMQ_HOST")
	config.RabbitMQ.Port = viper.GetString("RABBITMQ_PORT")
	config.RabbitMQ.User = viper.GetString("RABBITMQ_USER")
	config.RabbitMQ.Password = viper.GetString("RABBITMQ_PASSWORD")

	config.Limiter.RPS = viper.GetFloat64("LIMITER_RPS")
	config.Limiter.Burst = viper.GetInt("LIMITER_BURST")
	config.Limiter.Enabled = viper.GetBool("LIMITER_ENABLED")

	return &config, nil
}
