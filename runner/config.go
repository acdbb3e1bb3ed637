// Package runner assembles experiments from configuration: one agent
// with one value function against one environment, or a batch of
// agent/domain pairs run concurrently.
package runner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"solveragent/agents"
	"solveragent/env"
	"solveragent/eval"
	"solveragent/values"
)

// AgentSpec selects and configures a learning strategy.
type AgentSpec struct {
	Name string `yaml:"name" json:"name"`
	// "deepening" or "qlearning"
	Type string `yaml:"type" json:"type"`

	Deepening agents.DeepeningConfig `yaml:"deepening" json:"deepening"`
	QLearning agents.QLearningConfig `yaml:"qlearning" json:"qlearning"`
}

// RunConfig describes one agent/domain training run.
type RunConfig struct {
	ExperimentID   string `yaml:"experiment_id" json:"experiment_id"`
	EnvironmentURL string `yaml:"environment_url" json:"environment_url"`
	Domain         string `yaml:"domain" json:"domain"`

	Agent     AgentSpec     `yaml:"agent" json:"agent"`
	QFunction values.Config `yaml:"q_function" json:"q_function"`

	EvalEnvironment env.ProxyConfig `yaml:"eval_environment" json:"eval_environment"`

	ResultsDir string `yaml:"results_dir" json:"results_dir"`
	// When set, results and checkpoints go to Redis instead of files.
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`
}

// BatchConfig describes a batch: every agent spec crossed with every
// domain, each pair in its own isolated run.
type BatchConfig struct {
	Domains []string    `yaml:"domains" json:"domains"`
	Agents  []AgentSpec `yaml:"agents" json:"agents"`

	QFunction       values.Config   `yaml:"q_function" json:"q_function"`
	EvalEnvironment env.ProxyConfig `yaml:"eval_environment" json:"eval_environment"`

	// External environment server. Empty means each run gets a local
	// built-in server on EnvironmentPortBase+i.
	EnvironmentURL      string `yaml:"environment_url" json:"environment_url"`
	EnvironmentPortBase int    `yaml:"environment_port_base" json:"environment_port_base"`

	ResultsDir string `yaml:"results_dir" json:"results_dir"`
	RedisAddr  string `yaml:"redis_addr" json:"redis_addr"`
}

// EvalPolicyConfig describes a standalone policy evaluation.
type EvalPolicyConfig struct {
	EnvironmentURL string `yaml:"environment_url" json:"environment_url"`
	Domain         string `yaml:"domain" json:"domain"`

	// Path of a serialized value-function checkpoint. Ignored when
	// RandomPolicy is set.
	ModelPath    string `yaml:"model_path" json:"model_path"`
	RandomPolicy bool   `yaml:"random_policy" json:"random_policy"`

	EvalConfig eval.Config `yaml:"eval_config" json:"eval_config"`
}

// LoadConfig parses a config from a file path or an inline JSON/YAML
// document (JSON is a YAML subset, so one decoder covers both, the way
// the CLI accepts either a path or an inline blob).
func LoadConfig(pathOrInline string, out any) error {
	raw := []byte(pathOrInline)
	trimmed := strings.TrimSpace(pathOrInline)
	if !strings.HasPrefix(trimmed, "{") {
		bs, err := os.ReadFile(pathOrInline)
		if err != nil {
			return fmt.Errorf("reading config %s: %w", pathOrInline, err)
		}
		raw = bs
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}
