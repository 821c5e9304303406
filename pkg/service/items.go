package service

import (
	"context"
	"strings"
	"time"

	"shareit/pkg/apperr"
	"shareit/pkg/models"

	"gorm.io/gorm"
)

// ItemInput serves both creation and patching; on patch nil fields are left untouched.
type ItemInput struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId"`
}

func (in ItemInput) validate() error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return apperr.Validation("item name is required")
	}
	if in.Description == nil || strings.TrimSpace(*in.Description) == "" {
		return apperr.Validation("item description is required")
	}
	if in.Available == nil {
		return apperr.Validation("item availability is required")
	}
	return nil
}

func (s *Service) AddItem(ctx context.Context, ownerID int64, in ItemInput) (ItemView, error) {
	var item models.Item
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, ownerID); err != nil {
			return err
		}
		if err := in.validate(); err != nil {
			return err
		}
		item = models.Item{
			Name:        *in.Name,
			Description: *in.Description,
			Available:   *in.Available,
			OwnerID:     ownerID,
		}
		if in.RequestID != nil {
			if err := attachToRequest(tx, &item, *in.RequestID); err != nil {
				return err
			}
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return ItemView{}, err
	}
	s.log.Info("item created", "item_id", item.ID, "owner_id", ownerID)
	return itemView(&item, nil, nil, nil), nil
}

// UpdateItem patches name, description and availability; only the owner may do so.
func (s *Service) UpdateItem(ctx context.Context, ownerID, itemID int64, in ItemInput) (ItemView, error) {
	var view ItemView
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, ownerID); err != nil {
			return err
		}
		item, err := ownedItem(tx, ownerID, itemID)
		if err != nil {
			return err
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
			item.Name = *in.Name
		}
		if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
			item.Description = *in.Description
		}
		if in.Available != nil {
			item.Available = *in.Available
		}
		err = tx.Model(item).Select("name", "description", "available").Updates(item).Error
		if err != nil {
			return err
		}
		view, err = enrich(tx, item, s.Now())
		return err
	})
	if err != nil {
		return ItemView{}, err
	}
	return view, nil
}

func (s *Service) GetItem(ctx context.Context, itemID int64) (ItemView, error) {
	var view ItemView
	err := s.read(ctx, func(db *gorm.DB) error {
		item, err := findItem(db, itemID, false)
		if err != nil {
			return err
		}
		view, err = enrich(db, item, s.Now())
		return err
	})
	if err != nil {
		return ItemView{}, err
	}
	return view, nil
}

func (s *Service) ListItemsByOwner(ctx context.Context, ownerID int64) ([]ItemView, error) {
	var views []ItemView
	err := s.read(ctx, func(db *gorm.DB) error {
		if _, err := findUser(db, ownerID); err != nil {
			return err
		}
		var items []models.Item
		if err := db.Where("owner_id = ?", ownerID).Order("id").Find(&items).Error; err != nil {
			return err
		}
		var err error
		views, err = enrichAll(db, items, s.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// SearchItems matches available items whose name or description contains text, ignoring case.
// Blank text matches nothing.
func (s *Service) SearchItems(ctx context.Context, text string) ([]ItemView, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return []ItemView{}, nil
	}
	var views []ItemView
	err := s.read(ctx, func(db *gorm.DB) error {
		var available []models.Item
		if err := db.Where("available = ?", true).Order("id").Find(&available).Error; err != nil {
			return err
		}
		matched := make([]models.Item, 0, len(available))
		for _, item := range available {
			if strings.Contains(strings.ToLower(item.Name), needle) ||
				strings.Contains(strings.ToLower(item.Description), needle) {
				matched = append(matched, item)
			}
		}
		var err error
		views, err = enrichAll(db, matched, s.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *Service) RemoveItem(ctx context.Context, ownerID, itemID int64) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, ownerID); err != nil {
			return err
		}
		if _, err := ownedItem(tx, ownerID, itemID); err != nil {
			return err
		}
		return removeItems(tx, []int64{itemID})
	})
	if err != nil {
		return err
	}
	s.log.Info("item removed", "item_id", itemID)
	return nil
}

func (s *Service) RemoveItemsByOwner(ctx context.Context, ownerID int64) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, ownerID); err != nil {
			return err
		}
		var ids []int64
		if err := tx.Model(&models.Item{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return removeItems(tx, ids)
	})
}

// ownedItem hides other owners' items behind NotFound.
func ownedItem(tx *gorm.DB, ownerID, itemID int64) (*models.Item, error) {
	item, err := findItem(tx, itemID, false)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, apperr.NotFound("item with id %d not found for user %d", itemID, ownerID)
	}
	return item, nil
}

func removeItems(tx *gorm.DB, ids []int64) error {
	if err := tx.Where("item_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("item_id IN ?", ids).Delete(&models.Booking{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Item{}).Error
}

func enrich(db *gorm.DB, item *models.Item, now time.Time) (ItemView, error) {
	last, err := lastBooking(db, item.ID, now)
	if err != nil {
		return ItemView{}, err
	}
	next, err := nextBooking(db, item.ID, now)
	if err != nil {
		return ItemView{}, err
	}
	comments, err := itemComments(db, item.ID)
	if err != nil {
		return ItemView{}, err
	}
	return itemView(item, last, next, comments), nil
}

func enrichAll(db *gorm.DB, items []models.Item, now time.Time) ([]ItemView, error) {
	views := make([]ItemView, 0, len(items))
	for i := range items {
		v, err := enrich(db, &items[i], now)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func itemView(item *models.Item, last, next *models.Booking, comments []models.Comment) ItemView {
	v := ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     item.OwnerID,
		RequestID:   item.RequestID,
		LastBooking: bookingShort(last),
		NextBooking: bookingShort(next),
		Comments:    make([]CommentView, 0, len(comments)),
	}
	for i := range comments {
		v.Comments = append(v.Comments, commentView(&comments[i]))
	}
	return v
}
