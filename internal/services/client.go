package services

import (
  "context"
  "fmt"
  "strings"
  "github.com/google/uuid"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
  "github.com/dolbomcare/carelog-backend/internal/logger"
  "github.com/dolbomcare/carelog-backend/internal/repos"
  "github.com/dolbomcare/carelog-backend/internal/types"
)

type ClientService interface {
  RegisterClient(ctx context.Context, client *types.Client) error
  FindClient(ctx context.Context, id uuid.UUID) (*types.Client, error)
  FindClientsForWorker(ctx context.Context, socialWorkerID, careWorkerID uuid.UUID) ([]*types.Client, error)
}

type clientService struct {
  log         *logger.Logger
  clientRepo  repos.ClientRepo
  memberRepo  repos.MemberRepo
}

func NewClientService(log *logger.Logger, clientRepo repos.ClientRepo, memberRepo repos.MemberRepo) ClientService {
  serviceLog := log.With("service", "ClientService")
  return &clientService{log: serviceLog, clientRepo: clientRepo, memberRepo: memberRepo}
}

func (cs *clientService) RegisterClient(ctx context.Context, client *types.Client) error {
  if strings.TrimSpace(client.Name) == "" {
    return fmt.Errorf("%w: client name is required", apperr.ErrInvalidInput)
  }
  if client.Gender != types.GenderFemale && client.Gender != types.GenderMale {
    return fmt.Errorf("%w: gender must be %q or %q", apperr.ErrInvalidInput, types.GenderFemale, types.GenderMale)
  }
  if client.SocialWorkerID == uuid.Nil || client.CareWorkerID == uuid.Nil {
    return fmt.Errorf("%w: socialWorkerId and careWorkerId are required", apperr.ErrInvalidInput)
  }
  for _, memberID := range []uuid.UUID{client.SocialWorkerID, client.CareWorkerID} {
    member, err := cs.memberRepo.GetByID(ctx, nil, memberID)
    if err != nil {
      return fmt.Errorf("Failed to fetch member: %w", err)
    }
    if member == nil {
      return fmt.Errorf("%w: member %s", apperr.ErrNotFound, memberID)
    }
  }
  client.ID = uuid.New()
  if _, err := cs.clientRepo.Create(ctx, nil, []*types.Client{client}); err != nil {
    return fmt.Errorf("Failed to create client: %w", err)
  }
  cs.log.Debug("Client registered", "clientID", client.ID)
  return nil
}

func (cs *clientService) FindClient(ctx context.Context, id uuid.UUID) (*types.Client, error) {
  client, err := cs.clientRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch client: %w", err)
  }
  if client == nil {
    return nil, fmt.Errorf("%w: client %s", apperr.ErrNotFound, id)
  }
  return client, nil
}

func (cs *clientService) FindClientsForWorker(ctx context.Context, socialWorkerID, careWorkerID uuid.UUID) ([]*types.Client, error) {
  clients, err := cs.clientRepo.GetByWorker(ctx, nil, socialWorkerID, careWorkerID)
  if err != nil {
    return nil, fmt.Errorf("Failed to list clients: %w", err)
  }
  return clients, nil
}
