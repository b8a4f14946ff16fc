package reportgen

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "time"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/types"
  "github.com/dolbomcare/carelog-backend/internal/utils"
)

// Client calls the document-generation backend: weekly report generation,
// single-journal docx generation, and presigned download URL lookups.
type Client interface {
  GenerateWeeklyReport(ctx context.Context, req *WeeklyReportRequest) (*WeeklyReportResult, error)
  GenerateJournalDocx(ctx context.Context, req *JournalDocxRequest) (*JournalDocxResult, error)
  WeeklyDownloadURL(ctx context.Context, kind string, fileName string) (string, error)
  JournalDownloadURL(ctx context.Context, kind string, fileName string) (string, error)
}

const (
  KindDocx = "docx"
  KindPdf  = "pdf"
)

type WeeklyReportRequest struct {
  JournalSummary    []types.JournalSummaryItem  `json:"journalSummary"`
  PeriodStart       string                      `json:"periodStart"`
  PeriodEnd         string                      `json:"periodEnd"`
  ClientName        string                      `json:"clientName"`
  BirthDate         string                      `json:"birthDate"`
  GuardianContact   string                      `json:"guardianContact"`
  ReportDate        string                      `json:"reportDate"`
  SocialWorkerName  string                      `json:"socialWorkerName"`
}

type WeeklyReportResult struct {
  Title       string    `json:"title"`
  CareLevel   string    `json:"careLevel"`
  Summary     string    `json:"summary"`
  RiskNotes   string    `json:"riskNotes"`
  Evaluation  string    `json:"evaluation"`
  Suggestion  string    `json:"suggestion"`
  DocxURL     string    `json:"docx_url"`
  PdfURL      string    `json:"pdf_url"`
}

// JournalDocxRequest mirrors the document template fields of the backend;
// fields the journal cannot fill stay empty strings, never null.
type JournalDocxRequest struct {
  Text        string    `json:"text"`
  Date        string    `json:"date"`
  Service     string    `json:"service"`
  Manager     string    `json:"manager"`
  Method      string    `json:"method"`
  Type        string    `json:"type"`
  Time        string    `json:"time"`
  Title       string    `json:"title"`
  Category    string    `json:"category"`
  Client      string    `json:"client"`
  Contact     string    `json:"contact"`
  Opinion     string    `json:"opinion"`
  Result      string    `json:"result"`
  Note        string    `json:"note"`
}

type JournalDocxResult struct {
  File              string    `json:"file"`
  DocxURL           string    `json:"docx_url"`
  PdfURL            string    `json:"pdf_url"`
  Summary           string    `json:"summary"`
  Recommendations   string    `json:"recommendations"`
  Opinion           string    `json:"opinion"`
  Result            string    `json:"result"`
  Note              string    `json:"note"`
}

type downloadURLRequest struct {
  FileName    string    `json:"file_name"`
}

type downloadURLResponse struct {
  DownloadURL string    `json:"download_url"`
}

type client struct {
  httpClient      *http.Client
  log             *logger.Logger
  baseURL         string
  generateTimeout time.Duration
  downloadTimeout time.Duration
}

func NewClient(log *logger.Logger) Client {
  serviceLog := log.With("client", "ReportGenClient")
  baseURL := utils.GetEnv("REPORT_SERVER_URL", "http://python.service:5000", log)
  generateTimeoutMs := utils.GetEnvAsInt("REPORT_TIMEOUT", 600000, log)
  return &client{
    httpClient:      &http.Client{},
    log:             serviceLog,
    baseURL:         baseURL,
    generateTimeout: time.Duration(generateTimeoutMs) * time.Millisecond,
    downloadTimeout: 10 * time.Second,
  }
}

func (c *client) GenerateWeeklyReport(ctx context.Context, req *WeeklyReportRequest) (*WeeklyReportResult, error) {
  ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
  defer cancel()
  var result WeeklyReportResult
  if err := c.post(ctx, c.baseURL+"/generate-weekly-report", req, &result); err != nil {
    return nil, fmt.Errorf("generate weekly report: %w", err)
  }
  return &result, nil
}

func (c *client) GenerateJournalDocx(ctx context.Context, req *JournalDocxRequest) (*JournalDocxResult, error) {
  ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
  defer cancel()
  var result JournalDocxResult
  if err := c.post(ctx, c.baseURL+"/generate-journal-docx", req, &result); err != nil {
    return nil, fmt.Errorf("generate journal docx: %w", err)
  }
  return &result, nil
}

func (c *client) WeeklyDownloadURL(ctx context.Context, kind string, fileName string) (string, error) {
  ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
  defer cancel()
  url := fmt.Sprintf("%s/generate-weekly-report/download-weekly-%s-url", c.baseURL, kind)
  var result downloadURLResponse
  if err := c.post(ctx, url, downloadURLRequest{FileName: fileName}, &result); err != nil {
    return "", fmt.Errorf("weekly %s download url: %w", kind, err)
  }
  return result.DownloadURL, nil
}

func (c *client) JournalDownloadURL(ctx context.Context, kind string, fileName string) (string, error) {
  ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
  defer cancel()
  url := fmt.Sprintf("%s/generate-journal-docx/download-%s-url", c.baseURL, kind)
  var result downloadURLResponse
  if err := c.post(ctx, url, downloadURLRequest{FileName: fileName}, &result); err != nil {
    return "", fmt.Errorf("journal %s download url: %w", kind, err)
  }
  return result.DownloadURL, nil
}

func (c *client) post(ctx context.Context, url string, payload any, out any) error {
  raw, err := json.Marshal(payload)
  if err != nil {
    return fmt.Errorf("encode request: %w", err)
  }
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
  if err != nil {
    return fmt.Errorf("build request: %w", err)
  }
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return fmt.Errorf("request: %w", err)
  }
  defer resp.Body.Close()

  body, err := io.ReadAll(resp.Body)
  if err != nil {
    return fmt.Errorf("read response: %w", err)
  }
  if resp.StatusCode != http.StatusOK {
    return fmt.Errorf("report server returned status %d", resp.StatusCode)
  }
  if err := json.Unmarshal(body, out); err != nil {
    return fmt.Errorf("decode response: %w", err)
  }
  return nil
}
