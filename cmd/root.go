package cmd

import (
	"errors"
	"log"

	"github.com/spigell/candidate-matcher/internal/embedding"
	"github.com/spigell/candidate-matcher/internal/embedding/gemini"
	"github.com/spigell/candidate-matcher/internal/matching"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "candidate-matcher"
)

type Config struct {
	Matching  matching.Config  `mapstructure:"matching"`
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
}

type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider"`
	Dimension int           `mapstructure:"dimension"`
	Gemini    *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	Dimension    int    `mapstructure:"dimension"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "candidate-matcher scores candidates against job postings and explains the result",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embedding.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is candidate-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	d := matching.DefaultConfig()

	viper.SetDefault("matching.weights.skills", d.Weights.Skills)
	viper.SetDefault("matching.weights.experience", d.Weights.Experience)
	viper.SetDefault("matching.weights.semantic", d.Weights.Semantic)
	viper.SetDefault("matching.weights.education", d.Weights.Education)
	viper.SetDefault("matching.tiers.medium", d.Tiers.Medium)
	viper.SetDefault("matching.tiers.good", d.Tiers.Good)
	viper.SetDefault("matching.tiers.excellent", d.Tiers.Excellent)
	viper.SetDefault("matching.semantic-threshold", d.SemanticThreshold)
	viper.SetDefault("matching.min-score", d.MinScore)
	viper.SetDefault("matching.location-bonus", d.LocationBonus)
	viper.SetDefault("matching.education-keywords", d.EducationKeywords)
	viper.SetDefault("matching.education-missing-score", d.EducationMissingScore)
	viper.SetDefault("matching.workers", d.Workers)

	viper.SetDefault("embedding.provider", embedding.HashedName)
	viper.SetDefault("embedding.dimension", embedding.DefaultHashedDimension)
	viper.SetDefault("embedding.gemini.model", gemini.DefaultModel)
	viper.SetDefault("embedding.gemini.dimension", gemini.DefaultDimension)
	viper.SetDefault("embedding.gemini.max-retries", 3)
	viper.SetDefault("embedding.gemini.max-log-length", 120)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional: defaults cover every setting.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
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
