package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string  `yaml:"mode"`
	Notional    float64 `yaml:"notional"`
	DedupPath   string  `yaml:"dedup_path"`
	MappingPath string  `yaml:"mapping_path"`
	Account     struct {
		IDEnv string `yaml:"id_env"`
	} `yaml:"account"`
	Poll struct {
		MinWaitSeconds       int `yaml:"min_wait_seconds"`
		MaxWaitSeconds       int `yaml:"max_wait_seconds"`
		ErrorCooldownSeconds int `yaml:"error_cooldown_seconds"`
	} `yaml:"poll"`
	Feed struct {
		URL          string `yaml:"url"`
		PostSelector string `yaml:"post_selector"`
		TimeoutSecs  int    `yaml:"timeout_seconds"`
	} `yaml:"feed"`
	Broker struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"broker"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`
	Notify struct {
		Enabled  bool `yaml:"enabled"`
		Priority int  `yaml:"priority"`
	} `yaml:"notify"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Notional <= 0 {
		return fmt.Errorf("notional must be positive, got %.2f", c.Notional)
	}
	if c.MappingPath == "" {
		return errors.New("mapping_path cannot be empty")
	}
	if c.DedupPath == "" {
		return errors.New("dedup_path cannot be empty")
	}
	if c.Poll.MinWaitSeconds <= 0 || c.Poll.MaxWaitSeconds < c.Poll.MinWaitSeconds {
		return fmt.Errorf("poll window must satisfy 0 < min <= max, got [%d, %d]",
			c.Poll.MinWaitSeconds, c.Poll.MaxWaitSeconds)
	}
	if c.Feed.URL == "" {
		return errors.New("feed.url cannot be empty")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Notional == 0 {
		c.Notional = 1000
	}
	if c.DedupPath == "" {
		c.DedupPath = "seen_posts.json"
	}
	if c.Poll.MinWaitSeconds == 0 {
		c.Poll.MinWaitSeconds = 45
	}
	if c.Poll.MaxWaitSeconds == 0 {
		c.Poll.MaxWaitSeconds = 180
	}
	if c.Poll.ErrorCooldownSeconds == 0 {
		c.Poll.ErrorCooldownSeconds = 300
	}
	if c.Feed.TimeoutSecs == 0 {
		c.Feed.TimeoutSecs = 30
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 512
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
