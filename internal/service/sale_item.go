package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/errors"
	"github.com/Raisondetr3/store-sales-proxy/internal/model"
	"github.com/Raisondetr3/store-sales-proxy/internal/repository"
	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
)

const (
	MsgListFailed   = "Failed to fetch items from backend"
	MsgCreateFailed = "Failed to create item in backend"
	MsgItemNotFound = "Item not found"
	MsgUpdateFailed = "Failed to update item"
	MsgDeleteFailed = "Failed to delete item"
)

// SaleItemService forwards item operations to the backend once the gate says
// it is awake. Returned errors are *errors.ServiceError.
type SaleItemService interface {
	ListItems(ctx context.Context) (*repository.Payload, error)
	GetItem(ctx context.Context, id string) (*repository.Payload, error)
	CreateItem(ctx context.Context, body []byte) (*repository.Payload, error)
	UpdateItem(ctx context.Context, id string, body []byte) (*repository.Payload, error)
	DeleteItem(ctx context.Context, id string) (*repository.Payload, error)
}

type saleItemService struct {
	repo repository.SaleItemRepository
	gate HealthChecker
}

// NewSaleItemService with a nil repo answers every call with a configuration
// error.
func NewSaleItemService(repo repository.SaleItemRepository, gate HealthChecker) SaleItemService {
	return &saleItemService{
		repo: repo,
		gate: gate,
	}
}

func (s *saleItemService) ListItems(ctx context.Context) (*repository.Payload, error) {
	start := time.Now()
	operation := "ListItems"

	if err := s.ready(ctx, operation); err != nil {
		return nil, err
	}

	payload, err := s.repo.List(ctx)
	return s.finish(ctx, operation, "", start, payload, err, MsgListFailed)
}

func (s *saleItemService) GetItem(ctx context.Context, id string) (*repository.Payload, error) {
	start := time.Now()
	operation := "GetItem"

	if err := s.ready(ctx, operation); err != nil {
		return nil, err
	}

	payload, err := s.repo.GetByID(ctx, id)
	return s.finish(ctx, operation, id, start, payload, err, MsgItemNotFound)
}

func (s *saleItemService) CreateItem(ctx context.Context, body []byte) (*repository.Payload, error) {
	start := time.Now()
	operation := "CreateItem"

	if s.repo == nil {
		logger.LogError(ctx, errors.ErrBackendNotConfigured, operation)
		return nil, errors.ErrBackendNotConfigured
	}

	if err := model.ValidateCreatePayload(body); err != nil {
		svcErr := errors.ErrRequiredFields
		if stderrors.Is(err, model.ErrMalformedBody) && !json.Valid(body) {
			svcErr = errors.ErrInvalidJSON
		}
		logger.LogError(ctx, svcErr, operation)
		return nil, svcErr
	}

	if err := s.awake(ctx, operation); err != nil {
		return nil, err
	}

	payload, err := s.repo.Create(ctx, json.RawMessage(body))
	return s.finish(ctx, operation, "", start, payload, err, MsgCreateFailed)
}

func (s *saleItemService) UpdateItem(ctx context.Context, id string, body []byte) (*repository.Payload, error) {
	start := time.Now()
	operation := "UpdateItem"

	if s.repo == nil {
		logger.LogError(ctx, errors.ErrBackendNotConfigured, operation)
		return nil, errors.ErrBackendNotConfigured
	}

	if !json.Valid(body) {
		logger.LogError(ctx, errors.ErrInvalidJSON, operation)
		return nil, errors.ErrInvalidJSON
	}

	if err := s.awake(ctx, operation); err != nil {
		return nil, err
	}

	payload, err := s.repo.Update(ctx, id, json.RawMessage(body))
	return s.finish(ctx, operation, id, start, payload, err, MsgUpdateFailed)
}

func (s *saleItemService) DeleteItem(ctx context.Context, id string) (*repository.Payload, error) {
	start := time.Now()
	operation := "DeleteItem"

	if err := s.ready(ctx, operation); err != nil {
		return nil, err
	}

	payload, err := s.repo.DeleteByID(ctx, id)
	return s.finish(ctx, operation, id, start, payload, err, MsgDeleteFailed)
}

// ready covers the calls without a request body: configuration, then gate.
func (s *saleItemService) ready(ctx context.Context, operation string) error {
	if s.repo == nil {
		logger.LogError(ctx, errors.ErrBackendNotConfigured, operation)
		return errors.ErrBackendNotConfigured
	}
	return s.awake(ctx, operation)
}

func (s *saleItemService) awake(ctx context.Context, operation string) error {
	res := s.gate.CheckHealth(ctx, 0)
	if res.Healthy {
		return nil
	}

	svcErr := errors.NewUnavailable(res.Message)
	logger.LogError(ctx, svcErr, operation)
	return svcErr
}

func (s *saleItemService) finish(ctx context.Context, operation, id string, start time.Time, payload *repository.Payload, err error, fallback string) (*repository.Payload, error) {
	duration := time.Since(start)

	if err != nil {
		serviceErr := errors.WrapRepositoryError(err, fallback)
		logger.LogSaleItemOperation(ctx, operation, id, duration, serviceErr)
		return nil, serviceErr
	}

	logger.LogSaleItemOperation(ctx, operation, id, duration, nil)
	return payload, nil
}
