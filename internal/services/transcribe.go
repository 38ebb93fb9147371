package services

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
	"time"
)

// Transcriber takes a path to an assembled audio file and returns the
// transcribed text. Failures propagate as opaque errors; the caller aborts
// the whole finish operation and leaves the recording untouched.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperTranscriber calls an OpenAI-compatible audio/transcriptions
// endpoint with a multipart upload of the audio file.
type WhisperTranscriber struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

func NewWhisperTranscriber(apiKey, apiURL, model string) *WhisperTranscriber {
	return &WhisperTranscriber{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		// Transcription of long recordings is slow; the provider sets the pace.
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

type whisperResponse struct {
	Text string `json:"text"`
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", t.model); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription provider http %d: %s", resp.StatusCode, string(b))
	}

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	return wr.Text, nil
}
