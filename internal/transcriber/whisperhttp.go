package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultHTTPModel   = "base"
	defaultHTTPTimeout = 120 * time.Second
)

// HTTPConfig points at a faster-whisper sidecar.
type HTTPConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

type httpRecognizer struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP returns a Recognizer that posts audio to a faster-whisper HTTP sidecar.
func NewHTTP(cfg HTTPConfig) Recognizer {
	if cfg.Model == "" {
		cfg.Model = defaultHTTPModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &httpRecognizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (r *httpRecognizer) Name() string { return "whisper-http" }

// Healthy reports whether the sidecar answers its health endpoint.
func (r *httpRecognizer) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (r *httpRecognizer) Recognize(ctx context.Context, req Request) (Result, error) {
	body, contentType, err := r.encode(req)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL+"/transcribe", body)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode whisper response: %w", err)
	}
	return out.toResult(), nil
}

func (r *httpRecognizer) encode(req Request) (io.Reader, string, error) {
	audio, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("read audio file: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}

	_ = w.WriteField("model", r.cfg.Model)
	_ = w.WriteField("temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64))
	if req.Language != "" {
		_ = w.WriteField("language", req.Language)
	}
	if req.Prompt != "" {
		_ = w.WriteField("initial_prompt", req.Prompt)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	Text  string          `json:"text"`
	Start decimal.Decimal `json:"start"`
	End   decimal.Decimal `json:"end"`
}

var thousand = decimal.NewFromInt(1000)

func (w whisperResponse) toResult() Result {
	res := Result{Text: strings.TrimSpace(w.Text)}
	res.Spans = make([]Span, len(w.Segments))
	texts := make([]string, 0, len(w.Segments))
	for i, s := range w.Segments {
		res.Spans[i] = Span{
			StartMs: uint64(s.Start.Mul(thousand).IntPart()),
			EndMs:   uint64(s.End.Mul(thousand).IntPart()),
			Text:    strings.TrimSpace(s.Text),
		}
		if t := res.Spans[i].Text; t != "" {
			texts = append(texts, t)
		}
	}
	// some sidecars only fill segments
	if res.Text == "" {
		res.Text = strings.Join(texts, " ")
	}
	return res
}
