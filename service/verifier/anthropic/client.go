// Package anthropic implements verifier.Client on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/viant/scy"

	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/verifier"
)

// Config represents the Anthropic client settings. The API key is taken from
// APIKey, or revealed from the scy secret at SecretURL.
type Config struct {
	APIKey    string `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	SecretURL string `yaml:"secret_url" env:"CURATOR_VERIFIER_SECRET_URL"`
	SecretKey string `yaml:"secret_key" env:"CURATOR_VERIFIER_SECRET_KEY"`
	Model     string `yaml:"model" env:"CURATOR_VERIFIER_MODEL" env-default:"claude-sonnet-4-5"`
	MaxTokens int64  `yaml:"max_tokens" env:"CURATOR_VERIFIER_MAX_TOKENS" env-default:"4096"`
	BaseURL   string `yaml:"base_url" env:"CURATOR_VERIFIER_BASE_URL"`
}

type Client struct {
	config  Config
	secrets *scy.Service
	mu      sync.Mutex
	client  *anthropic.Client
}

// New creates a client; credentials are resolved on first use.
func New(config Config) *Client {
	if config.MaxTokens <= 0 {
		config.MaxTokens = 4096
	}
	return &Client{config: config, secrets: scy.New()}
}

// Check resolves credentials and reports a ConfigurationError when none are
// available.
func (c *Client) Check() error {
	_, err := c.ensureClient(context.Background())
	return err
}

// Review sends the request prompt as a single user message and returns the
// concatenated text blocks.
func (c *Client) Review(ctx context.Context, request *verifier.Request) (*verifier.Response, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: c.config.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("messages api call for %s: %w", request.Ref, err)
	}
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &verifier.Response{Text: text.String(), Model: string(msg.Model)}, nil
}

func (c *Client) ensureClient(ctx context.Context) (*anthropic.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	if c.config.Model == "" {
		return nil, types.NewConfigurationError("verifier model is not set")
	}
	key, err := c.apiKey(ctx)
	if err != nil {
		return nil, err
	}
	options := []option.RequestOption{option.WithAPIKey(key)}
	if c.config.BaseURL != "" {
		options = append(options, option.WithBaseURL(c.config.BaseURL))
	}
	client := anthropic.NewClient(options...)
	c.client = &client
	return c.client, nil
}

func (c *Client) apiKey(ctx context.Context) (string, error) {
	if key := strings.TrimSpace(c.config.APIKey); key != "" {
		return key, nil
	}
	if c.config.SecretURL == "" {
		return "", types.NewConfigurationError("verification service credentials are missing: set api_key or secret_url")
	}
	secret, err := c.secrets.Load(ctx, scy.NewResource(nil, c.config.SecretURL, c.config.SecretKey))
	if err != nil {
		return "", types.NewConfigurationError("failed to load verification secret %s: %v", c.config.SecretURL, err)
	}
	key := strings.TrimSpace(secret.String())
	if key == "" {
		return "", types.NewConfigurationError("verification secret %s is empty", c.config.SecretURL)
	}
	return key, nil
}

var _ verifier.Client = (*Client)(nil)
