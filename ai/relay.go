package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"threadpost/models"
	"threadpost/utils"
)

// Placeholder values substituted for response fields the generation service
// omitted or returned in the wrong shape. Substitution is deliberate policy:
// a service that produced only a summary should still deliver that summary.
const (
	SummaryPlaceholder   = "Summary not available or format incorrect."
	DialoguesPlaceholder = "Formatted conversation text not available."
)

const generatePath = "/summarize"

// ConversationFetcher is the slice of storage the relay needs.
type ConversationFetcher interface {
	GetByID(id string) (*models.Conversation, error)
}

// Relay forwards a prompt plus full conversation context to the external
// generation service and normalizes the partially-present response.
type Relay struct {
	store   ConversationFetcher
	baseURL string
	client  *http.Client
}

// Result is the normalized generation outcome. Both fields are always
// populated, with placeholders standing in for anything unusable upstream.
type Result struct {
	ConversationID string `json:"conversationId"`
	Summary        string `json:"summary"`
	Dialogues      string `json:"dialogues"`
}

type generateRequest struct {
	Prompt           string               `json:"prompt"`
	ConversationData *models.Conversation `json:"conversation_data"`
}

// NewRelay creates a relay against the configured service address. An empty
// baseURL is legal at construction time; Generate fails fast on it.
func NewRelay(store ConversationFetcher, baseURL string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Relay{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate runs one relay request: fetch the thread, call the service,
// normalize the response. Failures keep their origin: configuration,
// storage, transport, upstream status, or upstream shape.
func (r *Relay) Generate(ctx context.Context, id, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, utils.ValidationError("Prompt is required", nil)
	}
	if r.baseURL == "" {
		return nil, utils.ServiceNotConfiguredError("AI service address is not configured")
	}

	// Fetching
	conversation, err := r.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	// Requesting
	payload, err := json.Marshal(generateRequest{
		Prompt:           prompt,
		ConversationData: conversation,
	})
	if err != nil {
		return nil, utils.InternalServerError("Failed to build AI request payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, utils.InternalServerError("Failed to build AI request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		utils.Log.Warn("AI service unreachable: %v", err)
		return nil, utils.UpstreamUnavailableError("AI service is unreachable. Please try again later.", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, utils.UpstreamUnavailableError("Failed to read AI service response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var upstream map[string]interface{}
		if err := json.Unmarshal(body, &upstream); err != nil {
			upstream = map[string]interface{}{"error": strings.TrimSpace(string(body))}
		}
		utils.Log.Warn("AI service returned status %d for conversation %s", resp.StatusCode, id)
		return nil, utils.UpstreamErrorResponse(resp.StatusCode, "AI service returned an error.", upstream)
	}

	// NormalizingResponse
	return normalize(id, body)
}

// normalize applies the partial-degradation policy: each expected field is
// taken when it is a string and replaced by a placeholder otherwise. Only a
// response with neither usable field and no body at all is an error.
func normalize(id string, body []byte) (*Result, error) {
	result := &Result{
		ConversationID: id,
		Summary:        SummaryPlaceholder,
		Dialogues:      DialoguesPlaceholder,
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		fields = nil
	}

	usable := false
	if raw, ok := fields["summary"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			result.Summary = s
			usable = true
		}
	}
	if raw, ok := fields["dialogues"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			result.Dialogues = s
			usable = true
		}
	}

	if !usable && len(bytes.TrimSpace(body)) == 0 {
		return nil, utils.MalformedUpstreamResponseError("AI service returned an empty response", nil)
	}

	return result, nil
}
