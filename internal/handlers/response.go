package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
)

type APIError struct {
  Message     string	`json:"message"`
  Code	      string	`json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error	      APIError	`json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

// RespondDomainError maps sentinel errors onto HTTP statuses so handlers can
// pass service errors straight through.
func RespondDomainError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrInvalidPeriod):
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
  case errors.Is(err, apperr.ErrAuthenticationFailure):
    RespondError(c, http.StatusUnauthorized, "unauthorized", err)
  case errors.Is(err, apperr.ErrUnauthorized):
    RespondError(c, http.StatusForbidden, "forbidden", err)
  case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrDocumentNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, apperr.ErrNoMatchingJournals), errors.Is(err, apperr.ErrNoAuthorizedJournals):
    RespondError(c, http.StatusUnprocessableEntity, "no_journals", err)
  case errors.Is(err, apperr.ErrTranscriptionUnavailable), errors.Is(err, apperr.ErrNoReportsGenerated):
    RespondError(c, http.StatusBadGateway, "upstream_failure", err)
  default:
    RespondError(c, http.StatusInternalServerError, "internal", err)
  }
}
