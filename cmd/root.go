package cmd

import (
	"log"

	"github.com/vetworks/vetmatch/internal/matching"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "vetmatch"
)

type Config struct {
	DatabaseURLFile string        `mapstructure:"database-url-file"`
	RedisURL        string        `mapstructure:"redis-url"`
	Scrape          *ScrapeConfig `mapstructure:"scrape"`
	Matching        *MatchConfig  `mapstructure:"matching"`
	Server          *ServerConfig `mapstructure:"server"`
}

type ScrapeConfig struct {
	Command       string   `mapstructure:"command"`
	Args          []string `mapstructure:"args"`
	IntervalHours int      `mapstructure:"interval-hours"`
	MaxJobs       int      `mapstructure:"max-jobs"`
	RedFlags      []string `mapstructure:"red-flags"`
}

type MatchConfig struct {
	Limit   int               `mapstructure:"limit"`
	Weights *matching.Weights `mapstructure:"weights"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vetmatch matches scraped job postings to veteran candidate profiles",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database-url-file", "VETMATCH_DATABASE_URL_FILE"); err != nil {
		log.Fatalf("binding VETMATCH_DATABASE_URL_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("redis-url", "VETMATCH_REDIS_URL"); err != nil {
		log.Fatalf("binding VETMATCH_REDIS_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vetmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only the commands touching the database need a config file.
	if serveCmd.CalledAs() == "" && scrapeCmd.CalledAs() == "" && recommendCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// weights returns the configured scoring weights, falling back to defaults.
func (c *Config) weights() matching.Weights {
	if c.Matching == nil || c.Matching.Weights == nil {
		return matching.DefaultWeights()
	}
	return *c.Matching.Weights
}

// limit returns the configured recommendation cap, falling back to the default.
func (c *Config) limit() int {
	if c.Matching == nil || c.Matching.Limit <= 0 {
		return matching.DefaultLimit
	}
	return c.Matching.Limit
}
