package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleProvider implements SecondaryProvider against the public Google
// translate endpoint. It carries no confidence signal; the orchestrator
// assigns a fixed confidence to its results.
type GoogleProvider struct {
	httpClient *http.Client
	endpoint   string
}

// NewGoogleProvider creates a secondary provider with a 10-second HTTP
// timeout.
func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   defaultGoogleEndpoint,
	}
}

// NewGoogleProviderWithClient creates a provider with a custom HTTP client
// and endpoint, used by tests and proxy setups.
func NewGoogleProviderWithClient(client *http.Client, endpoint string) *GoogleProvider {
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	return &GoogleProvider{httpClient: client, endpoint: endpoint}
}

// Translate requests a translation of text from sourceLang to targetLang.
func (p *GoogleProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (SecondaryTranslation, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return SecondaryTranslation{}, p.fail(ReasonTransient, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return SecondaryTranslation{}, p.fail(ReasonTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return SecondaryTranslation{}, p.fail(ReasonQuotaExceeded, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return SecondaryTranslation{}, p.fail(ReasonTransient, fmt.Errorf("status %d", resp.StatusCode))
	}

	// The endpoint answers with nested arrays:
	// [[["<translated>","<original>",...],...],null,"<detected lang>",...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SecondaryTranslation{}, p.fail(ReasonTransient, fmt.Errorf("malformed response: %w", err))
	}
	if len(payload) == 0 {
		return SecondaryTranslation{}, p.fail(ReasonTransient, errors.New("empty response"))
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return SecondaryTranslation{}, p.fail(ReasonTransient, fmt.Errorf("malformed segments: %w", err))
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}
	if sb.Len() == 0 {
		return SecondaryTranslation{}, p.fail(ReasonTransient, errors.New("response carried no translation"))
	}

	detected := sourceLang
	if len(payload) > 2 {
		var lang string
		if err := json.Unmarshal(payload[2], &lang); err == nil && lang != "" {
			detected = lang
		}
	}

	return SecondaryTranslation{
		Text:               sb.String(),
		DetectedSourceLang: detected,
	}, nil
}

func (p *GoogleProvider) fail(reason FailureReason, err error) error {
	return &ProviderError{Provider: ServiceSecondary, Reason: reason, Err: err}
}
