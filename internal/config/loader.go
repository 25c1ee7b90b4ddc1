package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "LLMTOOLS_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// defaultYAML holds the hardcoded defaults; file and environment
// values are layered on top.
//
// Chunk size and overlap match the splitter parameters the retrieval
// engine was tuned with (1000/200).
const defaultYAML = `
logging:
  level: info
  format: json
store:
  path: ""
  compress: false
embeddings:
  base_url: https://api.openai.com/v1
  model: text-embedding-3-small
  api_key: ""
retrieval:
  chunk_size: 1000
  chunk_overlap: 200
  top_k: 3
  inline_threshold: 2000
  separator: "\n\n"
`

// Load loads configuration with the following precedence (highest to
// lowest):
//
//  1. Environment variables (LLMTOOLS_STORE_PATH, ...)
//  2. YAML config file (optional; skipped when path is empty or the
//     file does not exist)
//  3. Hardcoded defaults
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		data, err := readConfigFile(configPath)
		switch {
		case os.IsNotExist(err):
			// Missing file falls through to defaults + env.
		case err != nil:
			return nil, err
		default:
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readConfigFile reads a config file with a size cap.
func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("%w: config file %s exceeds %d bytes", ErrInvalidConfig, path, maxConfigFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, nil
}
