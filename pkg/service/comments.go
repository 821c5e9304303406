package service

import (
	"context"
	"strings"

	"shareit/pkg/apperr"
	"shareit/pkg/models"

	"gorm.io/gorm"
)

type CommentInput struct {
	Text string `json:"text"`
}

// CreateComment accepts a comment only from a user whose approved booking of the item has ended.
func (s *Service) CreateComment(ctx context.Context, itemID, authorID int64, in CommentInput) (CommentView, error) {
	now := s.Now()
	var comment models.Comment
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		author, err := findUser(tx, authorID)
		if err != nil {
			return err
		}
		item, err := findItem(tx, itemID, false)
		if err != nil {
			return err
		}
		var completed int64
		err = tx.Model(&models.Booking{}).
			Where("item_id = ? AND booker_id = ? AND status = ? AND end_date < ?",
				item.ID, author.ID, models.StatusApproved, now).
			Count(&completed).Error
		if err != nil {
			return err
		}
		if completed == 0 {
			return apperr.Validation("booking of item %d by user %d is not confirmed or not completed", item.ID, author.ID)
		}
		if strings.TrimSpace(in.Text) == "" {
			return apperr.Validation("comment text is required")
		}
		comment = models.Comment{
			Text:     in.Text,
			ItemID:   item.ID,
			AuthorID: author.ID,
			Created:  now,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		comment.Author = author
		return nil
	})
	if err != nil {
		return CommentView{}, err
	}
	s.log.Info("comment created", "comment_id", comment.ID, "item_id", itemID)
	return commentView(&comment), nil
}

// ListComments returns the item's comments, newest first.
func (s *Service) ListComments(ctx context.Context, itemID int64) ([]CommentView, error) {
	var comments []models.Comment
	err := s.read(ctx, func(db *gorm.DB) error {
		if _, err := findItem(db, itemID, false); err != nil {
			return err
		}
		var err error
		comments, err = itemComments(db, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}
	return views, nil
}

func itemComments(db *gorm.DB, itemID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.Preload("Author").
		Where("item_id = ?", itemID).
		Order("created DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}
