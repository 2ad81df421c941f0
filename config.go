package accounts

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server reads from its environment.
type Config struct {
	Port       string `env:"PORT" envDefault:"8090"`
	MongoURI   string `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	Database   string `env:"MONGO_DB" envDefault:"accounts"`
	SigningKey string `env:"AUTH_SIGNING_KEY,required,notEmpty"`
	UploadDir  string `env:"UPLOAD_DIR" envDefault:"uploads"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
