package services

import (
  "context"
  "fmt"
  "strings"
  "time"
  "golang.org/x/crypto/bcrypt"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/repos"
  "github.com/dolbomcare/carelog-backend/internal/requestdata"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type Identity struct {
  MemberID    uuid.UUID
  Role        string
}

type AuthService interface {
  Register(ctx context.Context, member *types.Member) error
  Login(ctx context.Context, email, password string) (string, error)
  VerifyToken(tokenString string) (*Identity, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  log           *logger.Logger
  memberRepo    repos.MemberRepo
  jwtSecretKey  string
  accessTTL     time.Duration
}

func NewAuthService(log *logger.Logger, memberRepo repos.MemberRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    log:          serviceLog,
    memberRepo:   memberRepo,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
  }
}

func (as *authService) Register(ctx context.Context, member *types.Member) error {
  member.Email = strings.TrimSpace(strings.ToLower(member.Email))
  member.Name = strings.TrimSpace(member.Name)
  if member.Email == "" || member.Password == "" || member.Name == "" {
    return fmt.Errorf("%w: email, password and name are required", apperr.ErrInvalidInput)
  }
  if member.Role != types.RoleSocialWorker && member.Role != types.RoleCareWorker {
    return fmt.Errorf("%w: unknown role %q", apperr.ErrInvalidInput, member.Role)
  }
  exists, err := as.memberRepo.EmailExists(ctx, nil, member.Email)
  if err != nil {
    return fmt.Errorf("Failed to check member email: %w", err)
  }
  if exists {
    return fmt.Errorf("%w: email already in use", apperr.ErrInvalidInput)
  }
  hashed, err := bcrypt.GenerateFromPassword([]byte(member.Password), bcrypt.DefaultCost)
  if err != nil {
    return fmt.Errorf("Failed to hash password: %w", err)
  }
  member.ID = uuid.New()
  member.Password = string(hashed)
  if _, err := as.memberRepo.Create(ctx, nil, []*types.Member{member}); err != nil {
    return fmt.Errorf("Failed to create member: %w", err)
  }
  return nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, error) {
  email = strings.TrimSpace(strings.ToLower(email))
  if email == "" || password == "" {
    return "", fmt.Errorf("%w: email and password are required", apperr.ErrInvalidInput)
  }
  members, err := as.memberRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return "", fmt.Errorf("Error retrieving member by email: %w", err)
  }
  if len(members) == 0 {
    return "", apperr.ErrAuthenticationFailure
  }
  member := members[0]
  if err := bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)); err != nil {
    return "", apperr.ErrAuthenticationFailure
  }
  return as.generateAccessToken(member)
}

func (as *authService) generateAccessToken(member *types.Member) (string, error) {
  now := time.Now()
  claims := jwt.MapClaims{
    "sub":  member.ID.String(),
    "role": member.Role,
    "iat":  now.Unix(),
    "exp":  now.Add(as.accessTTL).Unix(),
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  signed, err := token.SignedString([]byte(as.jwtSecretKey))
  if err != nil {
    return "", fmt.Errorf("Failed to sign access token: %w", err)
  }
  return signed, nil
}

func (as *authService) VerifyToken(tokenString string) (*Identity, error) {
  token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil || !token.Valid {
    return nil, apperr.ErrAuthenticationFailure
  }
  claims, ok := token.Claims.(jwt.MapClaims)
  if !ok {
    return nil, apperr.ErrAuthenticationFailure
  }
  sub, _ := claims["sub"].(string)
  memberID, err := uuid.Parse(sub)
  if err != nil {
    return nil, apperr.ErrAuthenticationFailure
  }
  role, _ := claims["role"].(string)
  return &Identity{MemberID: memberID, Role: role}, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  identity, err := as.VerifyToken(tokenString)
  if err != nil {
    return ctx, err
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    MemberID:    identity.MemberID,
    Role:        identity.Role,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
