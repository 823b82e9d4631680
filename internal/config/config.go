package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vilaca/profile-sync/internal/domain"
)

// Backend names for the version-control implementation.
const (
	GitBackendCLI   = "cli"
	GitBackendGoGit = "go-git"
)

// ConfigFileEnv names the environment variable holding an optional YAML config path.
const ConfigFileEnv = "PROFILE_SYNC_CONFIG"

// Config holds application configuration.
// Defaults reproduce the fixed identities and paths of a standard deployment;
// tests and operators override them explicitly.
type Config struct {
	// Identities on each source
	CodeforcesHandle string `yaml:"codeforces_handle" validate:"required"`
	LeetCodeUsername string `yaml:"leetcode_username" validate:"required"`

	// API endpoints
	CodeforcesURL string `yaml:"codeforces_url" validate:"required,url"`
	LeetCodeURL   string `yaml:"leetcode_url" validate:"required,url"`

	// Snapshot files, relative to RepoDir unless absolute
	CodeforcesInfoFile            string `yaml:"codeforces_info_file" validate:"required"`
	CodeforcesSubmissionsFile     string `yaml:"codeforces_submissions_file" validate:"required"`
	LeetCodeInfoFile              string `yaml:"leetcode_info_file" validate:"required"`
	LeetCodeRecentSubmissionsFile string `yaml:"leetcode_recent_submissions_file" validate:"required"`

	RecentSubmissionsLimit int `yaml:"recent_submissions_limit" validate:"min=1,max=20"`

	// Version control
	RepoDir      string `yaml:"repo_dir" validate:"required"`
	GitBackend   string `yaml:"git_backend" validate:"oneof=cli go-git"`
	GitRemote    string `yaml:"git_remote" validate:"required"`
	GitPushToken string `yaml:"-"`
	CommitName   string `yaml:"commit_name" validate:"required"`
	CommitEmail  string `yaml:"commit_email" validate:"required"`

	FetchDelay         time.Duration `yaml:"fetch_delay" validate:"min=0"`
	HTTPTimeoutSeconds int           `yaml:"http_timeout_seconds" validate:"min=1"`
	LogLevel           string        `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CodeforcesHandle:              "mandargurjar",
		LeetCodeUsername:              "mandargurjar",
		CodeforcesURL:                 "https://codeforces.com/api",
		LeetCodeURL:                   "https://leetcode.com/graphql",
		CodeforcesInfoFile:            "data/codeforces_info.json",
		CodeforcesSubmissionsFile:     "data/codeforces_submissions.json",
		LeetCodeInfoFile:              "data/leetcode_info.json",
		LeetCodeRecentSubmissionsFile: "data/leetcode_recent_submissions.json",
		RecentSubmissionsLimit:        20,
		RepoDir:                       ".",
		GitBackend:                    GitBackendCLI,
		GitRemote:                     "origin",
		CommitName:                    "github-actions[bot]",
		CommitEmail:                   "github-actions[bot]@users.noreply.github.com",
		FetchDelay:                    time.Second,
		HTTPTimeoutSeconds:            30,
		LogLevel:                      "info",
	}
}

// Load loads configuration: defaults, then the optional YAML file named by
// PROFILE_SYNC_CONFIG, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.CodeforcesHandle = getEnvOrDefault("CODEFORCES_HANDLE", c.CodeforcesHandle)
	c.LeetCodeUsername = getEnvOrDefault("LEETCODE_USERNAME", c.LeetCodeUsername)
	c.CodeforcesURL = getEnvOrDefault("CODEFORCES_URL", c.CodeforcesURL)
	c.LeetCodeURL = getEnvOrDefault("LEETCODE_URL", c.LeetCodeURL)
	c.RepoDir = getEnvOrDefault("REPO_DIR", c.RepoDir)
	c.GitBackend = getEnvOrDefault("GIT_BACKEND", c.GitBackend)
	c.GitRemote = getEnvOrDefault("GIT_REMOTE", c.GitRemote)
	c.GitPushToken = getEnvOrDefault("GIT_PUSH_TOKEN", c.GitPushToken)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	if ms, ok := getEnvInt("FETCH_DELAY_MS"); ok && ms >= 0 {
		c.FetchDelay = time.Duration(ms) * time.Millisecond
	}
	if s, ok := getEnvInt("HTTP_TIMEOUT_SECONDS"); ok && s > 0 {
		c.HTTPTimeoutSeconds = s
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SnapshotPath resolves a snapshot file against RepoDir.
func (c *Config) SnapshotPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.RepoDir, file)
}

// CommitIdentity returns the bot identity used for every commit.
func (c *Config) CommitIdentity() domain.CommitIdentity {
	return domain.CommitIdentity{Name: c.CommitName, Email: c.CommitEmail}
}

// HTTPTimeout returns the outbound request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
