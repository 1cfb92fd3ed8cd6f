package ollama

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds the configuration for the Ollama provider.
type Config struct {
	// Host is the base URL of the Ollama server, e.g. "http://127.0.0.1:11434".
	Host string `yaml:"host"`

	// Model is the model identifier passed on every request.
	Model string `yaml:"model"`

	// ContextWindow is the num_ctx option sent to the backend.
	ContextWindow int `yaml:"context_window"`

	// MaxPredict is the num_predict option (max output tokens).
	MaxPredict int `yaml:"max_predict"`

	// Temperature and TopP are the default sampling parameters.
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`

	// Stop lists sequences that terminate generation.
	Stop []string `yaml:"stop"`

	// Timeout bounds the full request round-trip.
	Timeout time.Duration `yaml:"timeout"`
}

// defaults sets default values for unset fields. The generation defaults
// match the persona tuning the bridge was deployed with.
func (c *Config) defaults() {
	if c.Host == "" {
		c.Host = "http://127.0.0.1:11434"
	}
	c.Host = strings.TrimRight(c.Host, "/")
	if c.Model == "" {
		c.Model = "llama3.1:8b-instruct"
	}
	if c.ContextWindow == 0 {
		c.ContextWindow = 4096
	}
	if c.MaxPredict == 0 {
		c.MaxPredict = 200
	}
	if c.Temperature == 0 {
		c.Temperature = 0.6
	}
	if c.TopP == 0 {
		c.TopP = 0.85
	}
	if len(c.Stop) == 0 {
		c.Stop = []string{"\n\n\n", "User:", "Assistant:"}
	}
	if c.Timeout == 0 {
		c.Timeout = 45 * time.Second
	}
}

// validate returns an error if required fields are missing or malformed.
func (c *Config) validate() error {
	if c.Host == "" {
		return errMissingField("host")
	}
	u, err := url.Parse(c.Host)
	if err != nil {
		return fmt.Errorf("provider.ollama: host is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider.ollama: host scheme must be http or https, got %q", u.Scheme)
	}
	if c.Model == "" {
		return errMissingField("model")
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("provider.ollama: context_window must not be negative")
	}
	if c.MaxPredict < 0 {
		return fmt.Errorf("provider.ollama: max_predict must not be negative")
	}
	return nil
}
