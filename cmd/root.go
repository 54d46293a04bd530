package cmd

import (
	"log"

	"github.com/thariqabe666/finalproj-group-2/internal/interview"
	"github.com/thariqabe666/finalproj-group-2/internal/orchestrator"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "careerai"
)

type Config struct {
	Server       *ServerConfig       `mapstructure:"server"`
	Dataset      *DatasetConfig      `mapstructure:"dataset"`
	AI           *AIConfig           `mapstructure:"ai"`
	Orchestrator orchestrator.Config `mapstructure:"orchestrator"`
	Interview    interview.Config    `mapstructure:"interview"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

type DatasetConfig struct {
	// Path is the sqlite database file holding the postings.
	Path string `mapstructure:"path"`
	// SeedFile is an optional JSON postings file loaded into the database
	// on startup.
	SeedFile string `mapstructure:"seed-file"`
	// TopK is how many snippets semantic search returns.
	TopK int `mapstructure:"top-k"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "careerai is a multi-agent career assistant over a job postings dataset",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is careerai.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// Config file is optional; defaults and environment cover the rest.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8080"
	}
	if config.Dataset == nil {
		config.Dataset = &DatasetConfig{}
	}
	if config.Dataset.Path == "" {
		config.Dataset.Path = "careerai.db"
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
