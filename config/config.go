package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env          string        `yaml:"env" env-default:"local"`
	MetadataPath string        `yaml:"metadata_path" env-default:"./broken_links_with_metadata.csv"`
	Collection   string        `yaml:"collection" env-default:"LPI Collection"`
	PDFDir       string        `yaml:"pdf_dir" env-default:"./pdfs"`
	Search       SearchConfig  `yaml:"search"`
	Wayback      WaybackConfig `yaml:"wayback"`
}

type SearchConfig struct {
	// FreeTextPolicy is "compose" (field filters AND free text) or
	// "gated" (free text ignored when any field filter is present).
	FreeTextPolicy string `yaml:"free_text_policy" env-default:"compose"`
	PageSize       int    `yaml:"page_size" env-default:"10"`
}

type WaybackConfig struct {
	OutputDir   string `yaml:"output_dir" env-default:"./retrieved_pdfs"`
	LogDBPath   string `yaml:"log_db_path" env-default:"./storage/wayback.db"`
	NotFoundCSV string `yaml:"not_found_csv" env-default:"./not_found_pdfs.csv"`
	Workers     int    `yaml:"workers" env-default:"4"`
}

func MustLoad() *Config {
	configPathFlag := flag.String("config", "", "Path to the config file")
	metadataPathFlag := flag.String("metadata-path", "", "Path to the metadata CSV file")
	flag.Parse()

	configPath := *configPathFlag
	if configPath == "" {
		configPath = fetchConfigPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("error loading config file: " + err.Error())
	}

	if *metadataPathFlag != "" {
		cfg.MetadataPath = *metadataPathFlag
	}

	if _, err := os.Stat(cfg.MetadataPath); os.IsNotExist(err) {
		fmt.Printf("Error: metadata file does not exist: %s\n", cfg.MetadataPath)
	}

	validateConfig(&cfg)

	return &cfg
}

// fetchConfigPath fetches the config path from the environment or falls
// back to the default location. Priority: flag > env > default.
func fetchConfigPath() string {
	res := os.Getenv("CONFIG_PATH")
	if res == "" {
		res = "./config/config_local.yaml"
	}
	return res
}

func validateConfig(cfg *Config) {
	switch cfg.Search.FreeTextPolicy {
	case "compose", "gated":
	default:
		panic("unknown free text policy: " + cfg.Search.FreeTextPolicy)
	}
	if cfg.Search.PageSize <= 0 {
		panic("search page size must be positive")
	}
	if cfg.Wayback.Workers <= 0 {
		panic("wayback workers must be positive")
	}
}
