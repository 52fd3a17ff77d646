package config

import (
	"gopkg.in/yaml.v2"
	"os"
)

type DBConfig struct {
	DBName   string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type ConfigSchema struct {
	Databases struct {
		Master   DBConfig   `yaml:"master"`
		Replicas []DBConfig `yaml:"replicas"`
	} `yaml:"db"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	Backend struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"backend"`
	Media struct {
		UploadURL      string `yaml:"upload_url"`
		MaxPostBytes   int64  `yaml:"max_post_bytes"`
		MaxAvatarBytes int64  `yaml:"max_avatar_bytes"`
	} `yaml:"media"`
	Logs struct {
		Level string `yaml:"level"`
	} `yaml:"logs"`
}

var AppConfig *ConfigSchema

func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var conf ConfigSchema
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return err
	}
	// Дефолтные лимиты медиа, если не заданы в конфиге
	if conf.Media.MaxPostBytes == 0 {
		conf.Media.MaxPostBytes = 10 * 1024 * 1024
	}
	if conf.Media.MaxAvatarBytes == 0 {
		conf.Media.MaxAvatarBytes = 2 * 1024 * 1024
	}
	AppConfig = &conf
	return nil
}
