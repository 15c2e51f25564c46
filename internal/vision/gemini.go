package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// GeminiInspector calls the Google Generative Language API to describe
// maintenance issues visible in an image.
type GeminiInspector struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiInspector constructs the inspector. The client's timeout bounds
// the whole call; a slow provider degrades to an error, never a hang.
func NewGeminiInspector(apiKey, model, baseURL string, client *http.Client) *GeminiInspector {
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiInspector{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Inspect sends the inspection prompt and the image to the model and returns
// the model's trimmed summary text.
func (g *GeminiInspector) Inspect(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: InspectionPrompt},
				{InlineData: &geminiInlineData{
					MimeType: imageMimeType(imagePath),
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("classifier returned %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("classifier returned %d", resp.StatusCode)
	}

	var summary strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			summary.WriteString(part.Text)
		}
		break
	}
	return strings.TrimSpace(summary.String()), nil
}

func imageMimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "image/jpeg"
}
