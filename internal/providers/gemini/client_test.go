package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"imageproxy/internal/domain"
)

type stubModels struct {
	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (s *stubModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	s.model = model
	s.contents = contents
	s.config = cfg
	return s.resp, s.err
}

func imageResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: genai.RoleModel, Parts: parts},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestFirstInlineImageSelectsImageRegardlessOfPosition(t *testing.T) {
	img := &genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("png")}}
	tests := []struct {
		name  string
		parts []*genai.Part
	}{
		{name: "middle", parts: []*genai.Part{{Text: "here you go"}, img, {Text: "enjoy"}}},
		{name: "first", parts: []*genai.Part{img, {Text: "caption"}}},
		{name: "last", parts: []*genai.Part{{Text: "caption"}, img}},
		{name: "after empty inline", parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png"}}, img}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FirstInlineImage(imageResponse(tc.parts...))
			if err != nil {
				t.Fatalf("FirstInlineImage returned error: %v", err)
			}
			if string(got.Data) != "png" || got.MIMEType != "image/png" {
				t.Fatalf("unexpected image: %+v", got)
			}
		})
	}
}

func TestFirstInlineImageUsesFirstCandidateOnly(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "no image"}}}, FinishReason: genai.FinishReasonStop},
			{Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("x")}}}}},
		},
	}
	_, err := FirstInlineImage(resp)
	var noImage *domain.NoImageReturnedError
	if !errors.As(err, &noImage) {
		t.Fatalf("expected NoImageReturnedError, got %v", err)
	}
}

func TestFirstInlineImageReportsFinishReason(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	_, err := FirstInlineImage(resp)
	var noImage *domain.NoImageReturnedError
	if !errors.As(err, &noImage) || noImage.FinishReason != string(genai.FinishReasonSafety) {
		t.Fatalf("expected finish reason SAFETY, got %v", err)
	}
	if !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("message should include finish reason: %q", err.Error())
	}

	_, err = FirstInlineImage(&genai.GenerateContentResponse{})
	if !errors.As(err, &noImage) {
		t.Fatalf("expected NoImageReturnedError for empty response, got %v", err)
	}
}

func TestGenerateSendsPromptOnly(t *testing.T) {
	stub := &stubModels{resp: imageResponse(&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("out")}})}
	c := New(stub, "")

	got, err := c.Generate(context.Background(), "a red cube")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if string(got.Data) != "out" {
		t.Fatalf("unexpected data %q", got.Data)
	}
	if stub.model != DefaultModel {
		t.Fatalf("model = %q, want %q", stub.model, DefaultModel)
	}
	if len(stub.contents) != 1 || len(stub.contents[0].Parts) != 1 || stub.contents[0].Parts[0].Text != "a red cube" {
		t.Fatalf("unexpected contents: %#v", stub.contents)
	}
	if stub.contents[0].Role != genai.RoleUser {
		t.Fatalf("role = %q", stub.contents[0].Role)
	}
	if got := strings.Join(stub.config.ResponseModalities, ","); got != "TEXT,IMAGE" {
		t.Fatalf("modalities = %q", got)
	}
}

func TestEditSendsPromptThenImage(t *testing.T) {
	stub := &stubModels{resp: imageResponse(&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("out")}})}
	c := New(stub, "custom-model")

	_, err := c.Edit(context.Background(), "make it blue", domain.ImageBlob{Data: []byte("src"), MIMEType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if stub.model != "custom-model" {
		t.Fatalf("model = %q", stub.model)
	}
	parts := stub.contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].Text != "make it blue" {
		t.Fatalf("first part should be the prompt, got %#v", parts[0])
	}
	if parts[1].InlineData == nil || string(parts[1].InlineData.Data) != "src" || parts[1].InlineData.MIMEType != "image/jpeg" {
		t.Fatalf("second part should be the image, got %#v", parts[1])
	}
}

func TestBackendErrorBecomesGenerationError(t *testing.T) {
	cause := errors.New("quota exhausted")
	c := New(&stubModels{err: cause}, "")
	_, err := c.Generate(context.Background(), "x")
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped GenerationError, got %v", err)
	}
}

func TestNewClientDecodesInlineDataFromWire(t *testing.T) {
	want := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"sure"},{"inlineData":{"mimeType":"image/png","data":%q}}]},"finishReason":"STOP"}]}`,
			base64.StdEncoding.EncodeToString(want))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Options{APIKey: "test", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	got, err := c.Edit(context.Background(), "a red cube", domain.ImageBlob{Data: []byte("source"), MIMEType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if string(got.Data) != string(want) {
		t.Fatalf("decoded data = %v, want %v", got.Data, want)
	}
	if !strings.HasSuffix(gotPath, "models/"+DefaultModel+":generateContent") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotBody, "a red cube") || !strings.Contains(gotBody, base64.StdEncoding.EncodeToString([]byte("source"))) {
		t.Fatalf("request body missing prompt or encoded image: %s", gotBody)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
