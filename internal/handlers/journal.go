package handlers

import (
  "io"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dolbomcare/carelog-backend/internal/requestdata"
  "github.com/dolbomcare/carelog-backend/internal/services"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type JournalHandler struct {
  journalService    services.JournalService
}

func NewJournalHandler(journalService services.JournalService) *JournalHandler {
  return &JournalHandler{journalService: journalService}
}

// Create accepts a multipart upload with the recorded audio and an optional
// transcript. The care worker is taken from the access token.
func (jh *JournalHandler) Create(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
    return
  }
  clientID, err := uuid.Parse(c.PostForm("clientId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clientId"})
    return
  }
  fileHeader, err := c.FormFile("audio")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
    return
  }
  file, err := fileHeader.Open()
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "could not read audio file"})
    return
  }
  defer file.Close()
  audio, err := io.ReadAll(file)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "could not read audio file"})
    return
  }

  journal, err := jh.journalService.CreateJournal(c.Request.Context(), services.CreateJournalInput{
    ClientID:     clientID,
    CareWorkerID: rd.MemberID,
    Audio:        audio,
    Transcript:   c.PostForm("transcript"),
  })
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, journal)
}

func (jh *JournalHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal id"})
    return
  }
  journal, err := jh.journalService.FindJournal(c.Request.Context(), id)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, journal)
}

func (jh *JournalHandler) GetSummary(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal id"})
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
    return
  }
  careWorkerID, socialWorkerID := roleScope(rd)
  summary, err := jh.journalService.FindJournalSummary(c.Request.Context(), id, careWorkerID, socialWorkerID)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, summary)
}

func (jh *JournalHandler) ListByClient(c *gin.Context) {
  clientID, err := uuid.Parse(c.Param("clientId"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
    return
  }
  careWorkerID, socialWorkerID := roleScope(rd)
  items, err := jh.journalService.FindJournalListByClient(c.Request.Context(), clientID, careWorkerID, socialWorkerID)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, items)
}

func (jh *JournalHandler) ListByDateRange(c *gin.Context) {
  startDate := c.Query("startDate")
  endDate := c.Query("endDate")
  if startDate == "" || endDate == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate are required"})
    return
  }
  items, err := jh.journalService.FindJournalListByDateRange(c.Request.Context(), startDate, endDate)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, items)
}

func (jh *JournalHandler) GetRawAudio(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal id"})
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
    return
  }
  url, err := jh.journalService.FindRawAudio(c.Request.Context(), id, rd.MemberID)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, gin.H{"rawAudioUrl": url})
}

func (jh *JournalHandler) UpdateTranscript(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal id"})
    return
  }
  var req struct {
    EditedTranscript    string      `json:"editedTranscript"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
    return
  }
  journal, err := jh.journalService.ModifyTranscript(c.Request.Context(), id, rd.MemberID, req.EditedTranscript)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, journal)
}

func (jh *JournalHandler) Summarize(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal id"})
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
    return
  }
  result, err := jh.journalService.SummarizeJournal(c.Request.Context(), id, rd.MemberID)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, result)
}

func (jh *JournalHandler) GetDocxDownloadURL(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal id"})
    return
  }
  url, err := jh.journalService.FindDocxPresignedURL(c.Request.Context(), id)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, gin.H{"downloadUrl": url})
}

func (jh *JournalHandler) GetPdfDownloadURL(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid journal id"})
    return
  }
  url, err := jh.journalService.FindPdfPresignedURL(c.Request.Context(), id)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, gin.H{"downloadUrl": url})
}

func roleScope(rd *requestdata.RequestData) (careWorkerID, socialWorkerID uuid.UUID) {
  switch rd.Role {
  case types.RoleSocialWorker:
    return uuid.Nil, rd.MemberID
  case types.RoleCareWorker:
    return rd.MemberID, uuid.Nil
  }
  return uuid.Nil, uuid.Nil
}
