package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dolbomcare/carelog-backend/internal/services"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type AuthHandler struct {
  authService       services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    Email       string      `json:"email"`
    Name        string      `json:"name"`
    Password    string      `json:"password"`
    Role        string      `json:"role"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  member := types.Member{
    Email:    req.Email,
    Name:     req.Name,
    Password: req.Password,
    Role:     req.Role,
  }
  if err := ah.authService.Register(c.Request.Context(), &member); err != nil {
    RespondDomainError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"id": member.ID, "success": "true"})
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email         string      `json:"email"`
    Password      string      `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  accessToken, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
    return
  }
  accessTTL := ah.authService.GetAccessTTL()
  expiresIn := int(accessTTL.Seconds())
  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "expires_in": expiresIn})
}
