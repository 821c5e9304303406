package service

import (
	"context"
	"errors"
	"strings"

	"shareit/pkg/apperr"
	"shareit/pkg/models"

	"gorm.io/gorm"
)

type RequestInput struct {
	Description *string `json:"description"`
}

func (s *Service) CreateRequest(ctx context.Context, requesterID int64, in RequestInput) (RequestView, error) {
	if in.Description == nil || strings.TrimSpace(*in.Description) == "" {
		return RequestView{}, apperr.Validation("request description is required")
	}
	request := models.ItemRequest{
		Description: *in.Description,
		RequesterID: requesterID,
		Created:     s.Now(),
	}
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, requesterID); err != nil {
			return err
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return RequestView{}, err
	}
	return requestView(&request), nil
}

// ListOwnRequests returns the caller's requests, newest first, with the items offered so far.
func (s *Service) ListOwnRequests(ctx context.Context, userID int64) ([]RequestView, error) {
	return s.listRequests(ctx, userID, Page{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("requester_id = ?", userID)
	})
}

// ListOtherRequests returns requests made by everyone except the caller, newest first.
func (s *Service) ListOtherRequests(ctx context.Context, userID int64, page Page) ([]RequestView, error) {
	return s.listRequests(ctx, userID, page, func(q *gorm.DB) *gorm.DB {
		return q.Where("requester_id <> ?", userID)
	})
}

func (s *Service) listRequests(ctx context.Context, userID int64, page Page, scope func(*gorm.DB) *gorm.DB) ([]RequestView, error) {
	var requests []models.ItemRequest
	err := s.read(ctx, func(db *gorm.DB) error {
		if _, err := findUser(db, userID); err != nil {
			return err
		}
		q := scope(db.Model(&models.ItemRequest{})).Order("created DESC").Order("id DESC")
		return page.apply(q).Preload("Items", orderByID).Find(&requests).Error
	})
	if err != nil {
		return nil, err
	}
	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		views = append(views, requestView(&requests[i]))
	}
	return views, nil
}

func (s *Service) GetRequest(ctx context.Context, requestID, userID int64) (RequestView, error) {
	var request models.ItemRequest
	err := s.read(ctx, func(db *gorm.DB) error {
		if _, err := findUser(db, userID); err != nil {
			return err
		}
		err := db.Preload("Items", orderByID).First(&request, requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("request with id %d not found", requestID)
		}
		return err
	})
	if err != nil {
		return RequestView{}, err
	}
	return requestView(&request), nil
}

// attachToRequest links an offered item to an existing request.
func attachToRequest(tx *gorm.DB, item *models.Item, requestID int64) error {
	var count int64
	if err := tx.Model(&models.ItemRequest{}).Where("id = ?", requestID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("request with id %d not found", requestID)
	}
	item.RequestID = &requestID
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
