package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Seednode/storyteller/dixit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages map[int]string

func (f fakeImages) Encoded(key int) (string, error) {
	data, ok := f[key]
	if !ok {
		return "", fmt.Errorf("no image for %d", key)
	}
	return data, nil
}

func completionServer(t *testing.T, answer string, seen *chatRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var raw map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		if seen != nil {
			seen.Model, _ = raw["model"].(string)
			seen.Temperature, _ = raw["temperature"].(float64)
			msgs, _ := raw["messages"].([]any)
			seen.Messages = make([]chatMessage, len(msgs))
			for i, m := range msgs {
				mm := m.(map[string]any)
				seen.Messages[i] = chatMessage{Role: mm["role"].(string), Content: mm["content"]}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, answer)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func testConfig(url string) OpenAIConfig {
	return OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: url + "/v1/"}
}

func TestOpenAIDescribe(t *testing.T) {
	var seen chatRequest
	srv := completionServer(t, "'quiet thunder'", &seen)
	o := NewOpenAI(testConfig(srv.URL), fakeImages{7: "aGVsbG8="}, "a kindergarten teacher", 0.7, srv.Client())

	clue, err := o.Describe(context.Background(), dixit.Card{Key: 7})
	require.NoError(t, err)
	assert.Equal(t, "quiet thunder", clue)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	assert.InDelta(t, 0.7, seen.Temperature, 1e-9)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Contains(t, seen.Messages[0].Content, "a kindergarten teacher")

	parts := seen.Messages[1].Content.([]any)
	require.Len(t, parts, 2)
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", img["url"])
}

func TestOpenAIChoose(t *testing.T) {
	var seen chatRequest
	srv := completionServer(t, "2", &seen)
	images := fakeImages{1: "YQ==", 2: "Yg==", 3: "Yw=="}
	o := NewOpenAI(testConfig(srv.URL), images, "a physicist", 0, srv.Client())

	c, err := o.Choose(context.Background(), "borrowed wings", cards(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Key)

	parts := seen.Messages[1].Content.([]any)
	assert.Len(t, parts, 4)
	assert.Contains(t, parts[0].(map[string]any)["text"], "borrowed wings")
}

func TestOpenAIChooseBadAnswers(t *testing.T) {
	images := fakeImages{1: "YQ==", 2: "Yg=="}

	for _, answer := range []string{"0", "3", "the second one"} {
		srv := completionServer(t, answer, nil)
		o := NewOpenAI(testConfig(srv.URL), images, "a farmer", 0, srv.Client())

		_, err := o.Choose(context.Background(), "clue", cards(1, 2))
		assert.Error(t, err, "answer %q", answer)
	}
}

func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := NewOpenAI(testConfig(srv.URL), fakeImages{1: "YQ=="}, "a farmer", 0, srv.Client())

	_, err := o.Describe(context.Background(), dixit.Card{Key: 1})
	assert.ErrorContains(t, err, "status 429")
}

func TestOpenAIMissingImage(t *testing.T) {
	o := NewOpenAI(testConfig("http://127.0.0.1:1"), fakeImages{}, "a farmer", 0, nil)

	_, err := o.Describe(context.Background(), dixit.Card{Key: 1})
	assert.ErrorContains(t, err, "no image")
}

func TestLoadOpenAIConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadOpenAIConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
}

func TestLoadOpenAIConfigRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadOpenAIConfig()
	assert.Error(t, err)
}
