package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dolbomcare/carelog-backend/internal/requestdata"
  "github.com/dolbomcare/carelog-backend/internal/services"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type ReportHandler struct {
  reportService     services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
  return &ReportHandler{reportService: reportService}
}

// CreateWeekly generates one weekly report per client covered by the
// request. The caller supplies either an explicit journalIds list or a
// startDate/endDate period; the social worker scope comes from the token.
func (rh *ReportHandler) CreateWeekly(c *gin.Context) {
  var req struct {
    JournalIDs    []uuid.UUID   `json:"journalIds"`
    StartDate     string        `json:"startDate"`
    EndDate       string        `json:"endDate"`
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
  socialWorkerID := uuid.Nil
  if rd.Role == types.RoleSocialWorker {
    socialWorkerID = rd.MemberID
  }
  views, err := rh.reportService.CreateWeeklyReports(c.Request.Context(), services.CreateWeeklyReportsInput{
    SocialWorkerID: socialWorkerID,
    JournalIDs:     req.JournalIDs,
    StartDate:      req.StartDate,
    EndDate:        req.EndDate,
  })
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, views)
}

func (rh *ReportHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
    return
  }
  view, err := rh.reportService.FindWeeklyReport(c.Request.Context(), id)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, view)
}

func (rh *ReportHandler) GetDocxDownloadURL(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
    return
  }
  url, err := rh.reportService.FindWeeklyReportDocxPresignedURL(c.Request.Context(), id)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, gin.H{"downloadUrl": url})
}

func (rh *ReportHandler) GetPdfDownloadURL(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
    return
  }
  url, err := rh.reportService.FindWeeklyReportPdfPresignedURL(c.Request.Context(), id)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, gin.H{"downloadUrl": url})
}
