package test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	OllamaURLEnv     = "TUSKMEM_TEST_OLLAMA_URL"
	OllamaModelEnv   = "TUSKMEM_TEST_OLLAMA_MODEL"
	defaultTestModel = "nomic-embed-text"
)

// GetOllamaURL returns the Ollama server used by integration tests, or skips
// the test when none is configured or reachable.
func GetOllamaURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv(OllamaURLEnv)
	if url == "" {
		t.Skipf("%s not set", OllamaURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/tags", nil)
	if err != nil {
		t.Skipf("bad %s: %v", OllamaURLEnv, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Skipf("Ollama not reachable at %s: %v", url, err)
	}
	resp.Body.Close()
	return url
}

func GetOllamaModel() string {
	if m := os.Getenv(OllamaModelEnv); m != "" {
		return m
	}
	return defaultTestModel
}
