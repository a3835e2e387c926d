// config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server    ServerConfiguration
	RateLimit RateLimitConfiguration
	AWS       AWSConfiguration
	Accounts  []AccountConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// RateLimitConfiguration stores the request quota for the rate limiter
type RateLimitConfiguration struct {
	Requests int
	Window   string
}

// AWSConfiguration stores the settings used by the caching agent
type AWSConfiguration struct {
	Account     string
	Region      string
	PollOnStart bool
}

// AccountConfiguration is one entry of the configured account registry
type AccountConfiguration struct {
	Name      string
	AccountID string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "7002")
	viper.SetDefault("log.dir", "logs")
	viper.SetDefault("ratelimit.requests", 100)
	viper.SetDefault("ratelimit.window", "1m")
	viper.SetDefault("aws.region", "us-east-1")
	viper.SetDefault("aws.pollOnStart", false)

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
