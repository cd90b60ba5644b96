package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Elo          Elo
	Selector     Selector
	Simulation   Simulation
	GeminiApiKey string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Elo holds the rating-update tunables. Defaults follow the standard
// 1000-baseline scheme: users move fast (K=32), questions move slowly (K=8)
// and freeze entirely once enough answers have accumulated.
type Elo struct {
	UserK            float64
	QuestionK        float64
	StabilizeAfter   int
	PassSkillRating  float64
	ProficiencyFloor float64
	ProficiencyCeil  float64
}

// Selector controls adaptive question selection.
type Selector struct {
	DifficultyWindow float64 // initial ± window around the user's domain rating
	RecentDays       int     // exclude questions answered within the last N days (0 disables)
}

// Simulation controls the timed full-exam mode.
type Simulation struct {
	QuestionCount    int
	TimeLimitMinutes int
	PassScore        int // 0-1000 scale
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ELO_USER_K", 32.0)
	viper.SetDefault("ELO_QUESTION_K", 8.0)
	viper.SetDefault("ELO_STABILIZE_AFTER", 100)
	viper.SetDefault("ELO_PASS_SKILL_RATING", 1100.0)
	viper.SetDefault("ELO_PROFICIENCY_FLOOR", 600.0)
	viper.SetDefault("ELO_PROFICIENCY_CEIL", 1400.0)
	viper.SetDefault("SELECTOR_DIFFICULTY_WINDOW", 150.0)
	viper.SetDefault("SELECTOR_RECENT_DAYS", 3)
	viper.SetDefault("SIMULATION_QUESTION_COUNT", 60)
	viper.SetDefault("SIMULATION_TIME_LIMIT_MINUTES", 90)
	viper.SetDefault("SIMULATION_PASS_SCORE", 700)

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Elo.UserK = viper.GetFloat64("ELO_USER_K")
	config.Elo.QuestionK = viper.GetFloat64("ELO_QUESTION_K")
	config.Elo.StabilizeAfter = viper.GetInt("ELO_STABILIZE_AFTER")
	config.Elo.PassSkillRating = viper.GetFloat64("ELO_PASS_SKILL_RATING")
	config.Elo.ProficiencyFloor = viper.GetFloat64("ELO_PROFICIENCY_FLOOR")
	config.Elo.ProficiencyCeil = viper.GetFloat64("ELO_PROFICIENCY_CEIL")

	config.Selector.DifficultyWindow = viper.GetFloat64("SELECTOR_DIFFICULTY_WINDOW")
	config.Selector.RecentDays = viper.GetInt("SELECTOR_RECENT_DAYS")

	config.Simulation.QuestionCount = viper.GetInt("SIMULATION_QUESTION_COUNT")
	config.Simulation.TimeLimitMinutes = viper.GetInt("SIMULATION_TIME_LIMIT_MINUTES")
	config.Simulation.PassScore = viper.GetInt("SIMULATION_PASS_SCORE")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	log.Info().Str("port", config.Server.Port).Msg("Config loaded")
	return &config, nil
}
