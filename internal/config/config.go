package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	RosterPath      string
	CatalogPath     string
	ZipsDir         string
	OutputDir       string
	AliasConfigPath string

	VoteChunkSize int

	// Decision thresholds for the initiative matcher.
	MatchHighThreshold  float64
	MatchMidThreshold   float64
	MatchGapThreshold   float64
	MatchAmbiguousFloor float64

	// Candidate-set bounds for the initiative matcher.
	CandidateAnchorMax int
	CandidatePruneAt   int
	CandidateShortlist int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}
	dataDir := getEnv("DATA_DIR", filepath.Join(cwd, "data"))

	cfg := Config{
		RosterPath:      getEnv("ROSTER_JSON", filepath.Join(dataDir, "diputados.json")),
		CatalogPath:     getEnv("CATALOG_JSON", filepath.Join(dataDir, "iniciativas.json")),
		ZipsDir:         getEnv("ZIPS_DIR", filepath.Join(dataDir, "votaciones_zips")),
		OutputDir:       getEnv("OUTPUT_DIR", filepath.Join(dataDir, "out_votaciones")),
		AliasConfigPath: getEnv("ALIAS_CONFIG", ""),

		VoteChunkSize: getEnvInt("VOTE_CHUNK_SIZE", 50000),

		MatchHighThreshold:  getEnvFloat("MATCH_HIGH_THRESHOLD", 0.85),
		MatchMidThreshold:   getEnvFloat("MATCH_MID_THRESHOLD", 0.70),
		MatchGapThreshold:   getEnvFloat("MATCH_GAP_THRESHOLD", 0.05),
		MatchAmbiguousFloor: getEnvFloat("MATCH_AMBIGUOUS_FLOOR", 0.60),

		CandidateAnchorMax: getEnvInt("CANDIDATE_ANCHOR_MAX", 2000),
		CandidatePruneAt:   getEnvInt("CANDIDATE_PRUNE_AT", 1500),
		CandidateShortlist: getEnvInt("CANDIDATE_SHORTLIST", 800),
	}

	return cfg, nil
}

func (c Config) ReportsDir() string {
	return filepath.Join(c.OutputDir, "reports")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
