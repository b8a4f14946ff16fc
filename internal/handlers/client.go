package handlers

import (
  "net/http"
  "time"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/dolbomcare/carelog-backend/internal/requestdata"
  "github.com/dolbomcare/carelog-backend/internal/services"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type ClientHandler struct {
  clientService     services.ClientService
}

func NewClientHandler(clientService services.ClientService) *ClientHandler {
  return &ClientHandler{clientService: clientService}
}

func (ch *ClientHandler) Register(c *gin.Context) {
  var req struct {
    Name              string      `json:"name"`
    BirthDate         string      `json:"birthDate"`
    Gender            string      `json:"gender"`
    GuardianContact   string      `json:"guardianContact"`
    Address           string      `json:"address"`
    SocialWorkerID    uuid.UUID   `json:"socialWorkerId"`
    CareWorkerID      uuid.UUID   `json:"careWorkerId"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  birthDate, err := time.Parse("2006-01-02", req.BirthDate)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "birthDate must be YYYY-MM-DD"})
    return
  }
  client := types.Client{
    Name:            req.Name,
    BirthDate:       birthDate,
    Gender:          req.Gender,
    GuardianContact: req.GuardianContact,
    Address:         req.Address,
    SocialWorkerID:  req.SocialWorkerID,
    CareWorkerID:    req.CareWorkerID,
  }
  if err := ch.clientService.RegisterClient(c.Request.Context(), &client); err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, client)
}

func (ch *ClientHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
    return
  }
  client, err := ch.clientService.FindClient(c.Request.Context(), id)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, client)
}

// ListMine returns the clients assigned to the caller, scoped by role.
func (ch *ClientHandler) ListMine(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
    return
  }
  socialWorkerID := uuid.Nil
  careWorkerID := uuid.Nil
  switch rd.Role {
  case types.RoleSocialWorker:
    socialWorkerID = rd.MemberID
  case types.RoleCareWorker:
    careWorkerID = rd.MemberID
  }
  clients, err := ch.clientService.FindClientsForWorker(c.Request.Context(), socialWorkerID, careWorkerID)
  if err != nil {
    RespondDomainError(c, err)
    return
  }
  RespondOK(c, clients)
}
