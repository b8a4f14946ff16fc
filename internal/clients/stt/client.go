package stt

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strings"
  "time"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/utils"
)

// Client calls the speech-to-text backend. Callers get exactly one final
// string or one error; no partial results are surfaced.
type Client interface {
  Transcribe(ctx context.Context, audio []byte) (string, error)
}

type transcribeResponse struct {
  Text    string    `json:"text"`
}

type client struct {
  httpClient  *http.Client
  log         *logger.Logger
  serverURL   string
  maxAttempts int
  retryDelay  time.Duration
}

func NewClient(log *logger.Logger) Client {
  serviceLog := log.With("client", "STTClient")
  serverURL := utils.GetEnv("STT_SERVER_URL", "http://python.service:5000/transcribe", log)
  timeoutMs := utils.GetEnvAsInt("STT_TIMEOUT", 60000, log)
  return &client{
    httpClient: &http.Client{
      Timeout: time.Duration(timeoutMs) * time.Millisecond,
    },
    log:          serviceLog,
    serverURL:    serverURL,
    maxAttempts:  3,
    retryDelay:   time.Second,
  }
}

func (c *client) Transcribe(ctx context.Context, audio []byte) (string, error) {
  var lastErr error
  for attempt := 1; attempt <= c.maxAttempts; attempt++ {
    if err := ctx.Err(); err != nil {
      return "", err
    }
    c.log.Debug("STT attempt", "attempt", attempt, "max", c.maxAttempts)

    text, err := c.transcribeOnce(ctx, audio)
    if err == nil {
      return text, nil
    }
    lastErr = err
    c.log.Error("STT attempt failed", "attempt", attempt, "max", c.maxAttempts, "error", err)

    if attempt < c.maxAttempts {
      select {
      case <-time.After(c.retryDelay):
      case <-ctx.Done():
        return "", ctx.Err()
      }
    }
  }
  return "", fmt.Errorf("%w: %v", apperr.ErrTranscriptionUnavailable, lastErr)
}

func (c *client) transcribeOnce(ctx context.Context, audio []byte) (string, error) {
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(audio))
  if err != nil {
    return "", fmt.Errorf("build stt request: %w", err)
  }
  req.Header.Set("Content-Type", "audio/webm")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return "", fmt.Errorf("stt request: %w", err)
  }
  defer resp.Body.Close()

  body, err := io.ReadAll(resp.Body)
  if err != nil {
    return "", fmt.Errorf("read stt response: %w", err)
  }
  if resp.StatusCode != http.StatusOK {
    return "", fmt.Errorf("stt server returned status %d", resp.StatusCode)
  }

  var parsed transcribeResponse
  if err := json.Unmarshal(body, &parsed); err != nil {
    return "", fmt.Errorf("decode stt response: %w", err)
  }
  text := strings.TrimSpace(parsed.Text)
  if text == "" {
    return "", fmt.Errorf("stt server returned no text")
  }
  return text, nil
}
