package summary

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaGenerator runs the digest prompt against a local Ollama server.
// Useful for offline runs; the fallback list then names local models.
type OllamaGenerator struct {
	client  *api.Client
	timeout time.Duration
	mu      sync.Mutex
}

func NewOllamaGenerator(baseURL string, timeout time.Duration) *OllamaGenerator {
	httpClient := &http.Client{}

	c := api.NewClient(&url.URL{
		Scheme: "http",
		Host:   baseURL,
		Path:   "/",
	}, httpClient)

	return &OllamaGenerator{
		client:  c,
		timeout: timeout,
	}
}

func (o *OllamaGenerator) Generate(ctx context.Context, modelName, prompt string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	req := &api.GenerateRequest{
		Model:  modelName,
		Prompt: prompt,
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var responseFlow []string
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		responseFlow = append(responseFlow, resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	return strings.Join(responseFlow, ""), nil
}
