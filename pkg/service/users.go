package service

import (
	"context"
	"strings"

	"shareit/pkg/apperr"
	"shareit/pkg/models"

	"gorm.io/gorm"
)

// UserInput serves both creation and patching; nil fields are left untouched on patch.
type UserInput struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Service) ListUsers(ctx context.Context) ([]UserView, error) {
	var users []models.User
	err := s.read(ctx, func(db *gorm.DB) error {
		return db.Order("id").Find(&users).Error
	})
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, userView(&users[i]))
	}
	return views, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (UserView, error) {
	var user *models.User
	err := s.read(ctx, func(db *gorm.DB) error {
		var err error
		user, err = findUser(db, id)
		return err
	})
	if err != nil {
		return UserView{}, err
	}
	return userView(user), nil
}

func (s *Service) AddUser(ctx context.Context, in UserInput) (UserView, error) {
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" {
		return UserView{}, apperr.Validation("email is required")
	}
	user := models.User{Email: strings.TrimSpace(*in.Email)}
	if in.Name != nil {
		user.Name = *in.Name
	}

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, user.Email, 0); err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if apperr.Is(err, apperr.KindConflict) {
		return UserView{}, apperr.Conflict("email %s is already in use", user.Email)
	}
	if err != nil {
		return UserView{}, err
	}
	s.log.Info("user created", "user_id", user.ID)
	return userView(&user), nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, in UserInput) (UserView, error) {
	var user *models.User
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = findUser(tx, id)
		if err != nil {
			return err
		}
		changed := false
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" && *in.Name != user.Name {
			user.Name = *in.Name
			changed = true
		}
		if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
			email := strings.TrimSpace(*in.Email)
			if email != user.Email {
				if err := ensureEmailFree(tx, email, id); err != nil {
					return err
				}
				user.Email = email
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return tx.Save(user).Error
	})
	if apperr.Is(err, apperr.KindConflict) && in.Email != nil {
		return UserView{}, apperr.Conflict("email %s is already in use", strings.TrimSpace(*in.Email))
	}
	if err != nil {
		return UserView{}, err
	}
	return userView(user), nil
}

func (s *Service) RemoveUser(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, id); err != nil {
			return err
		}
		return removeUserCascade(tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("user removed", "user_id", id)
	return nil
}

func (s *Service) RemoveAllUsers(ctx context.Context) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Comment{}, &models.Booking{}, &models.Item{}, &models.ItemRequest{}, &models.User{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureEmailFree(tx *gorm.DB, email string, exceptID int64) error {
	var count int64
	err := tx.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("email %s is already in use", email)
	}
	return nil
}

// removeUserCascade deletes dependents before the user so foreign keys hold at every statement.
func removeUserCascade(tx *gorm.DB, userID int64) error {
	var itemIDs, requestIDs []int64
	if err := tx.Model(&models.Item{}).Where("owner_id = ?", userID).Pluck("id", &itemIDs).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.ItemRequest{}).Where("requester_id = ?", userID).Pluck("id", &requestIDs).Error; err != nil {
		return err
	}

	if err := tx.Where("author_id = ? OR item_id IN ?", userID, nonEmpty(itemIDs)).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("booker_id = ? OR item_id IN ?", userID, nonEmpty(itemIDs)).Delete(&models.Booking{}).Error; err != nil {
		return err
	}
	if len(requestIDs) > 0 {
		err := tx.Model(&models.Item{}).
			Where("request_id IN ?", requestIDs).
			Update("request_id", gorm.Expr("NULL")).Error
		if err != nil {
			return err
		}
	}
	if err := tx.Where("owner_id = ?", userID).Delete(&models.Item{}).Error; err != nil {
		return err
	}
	if err := tx.Where("requester_id = ?", userID).Delete(&models.ItemRequest{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.User{}, userID).Error
}

// nonEmpty keeps IN clauses valid when there is nothing to match.
func nonEmpty(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{0}
	}
	return ids
}
