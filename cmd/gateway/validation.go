package main

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"shareit/pkg/apperr"
	"shareit/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const headerUserID = "X-Sharer-User-Id"

type newUser struct {
	Name  *string `json:"name" binding:"required"`
	Email string  `json:"email" binding:"required,notblank,email"`
}

type userPatch struct {
	Name  *string `json:"name"`
	Email string  `json:"email" binding:"omitempty,email"`
}

type newItem struct {
	Name        string `json:"name" binding:"required,notblank"`
	Description string `json:"description" binding:"required,notblank"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"requestId" binding:"omitempty,gt=0"`
}

type itemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type newComment struct {
	Text string `json:"text" binding:"required,notblank"`
}

type newRequest struct {
	Description string `json:"description" binding:"required,notblank"`
}

type newBooking struct {
	ItemID *int64                `json:"itemId" binding:"required,gt=0"`
	Start  *models.LocalDateTime `json:"start" binding:"required,futureorpresent"`
	End    *models.LocalDateTime `json:"end" binding:"required,future"`
}

func (b *newBooking) validate() error {
	if !b.End.After(b.Start.Time) {
		return apperr.InvalidRequest("booking end %s must be after start %s", b.End, b.Start)
	}
	return nil
}

// selfChecker is implemented by bodies with rules that span several fields.
type selfChecker interface {
	validate() error
}

func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if dt, ok := field.Interface().(models.LocalDateTime); ok {
			return dt.Time
		}
		return nil
	}, models.LocalDateTime{})
	v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterValidation("futureorpresent", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.Before(now().Truncate(time.Second))
	})
	v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(now())
	})
}

// validateBody rejects a request whose JSON body does not satisfy T's binding rules.
// The raw body stays cached on the context for forwarding.
func validateBody[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body T
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				respondError(c, apperr.Validation("%s", describe(verrs)))
				return
			}
			respondError(c, apperr.InvalidRequest("malformed request body: %v", err))
			return
		}
		if checker, ok := any(&body).(selfChecker); ok {
			if err := checker.validate(); err != nil {
				respondError(c, err)
				return
			}
		}
		c.Next()
	}
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+": must be present")
		case "notblank":
			parts = append(parts, fe.Field()+": must not be blank")
		case "email":
			parts = append(parts, fe.Field()+": must be a well-formed email address")
		case "future":
			parts = append(parts, fe.Field()+": must be in the future")
		case "futureorpresent":
			parts = append(parts, fe.Field()+": must be in the present or future")
		default:
			parts = append(parts, fmt.Sprintf("%s: failed on %s %s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(parts, ", ")
}

func requireUser(c *gin.Context) {
	raw := c.GetHeader(headerUserID)
	if raw == "" {
		respondError(c, apperr.InvalidRequest("header %s is required", headerUserID))
		return
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err != nil || id <= 0 {
		respondError(c, apperr.InvalidRequest("header %s must be a positive integer, got %q", headerUserID, raw))
		return
	}
	c.Next()
}

func validateState(c *gin.Context) {
	state := c.Query("state")
	if _, ok := models.ParseBookingState(state); !ok {
		respondError(c, apperr.InvalidRequest("Unknown state: %s", state))
		return
	}
	c.Next()
}

func validatePaging(c *gin.Context) {
	if raw, ok := c.GetQuery("from"); ok {
		from, err := strconv.Atoi(raw)
		if err != nil || from < 0 {
			respondError(c, apperr.Validation("from must be a non-negative integer, got %q", raw))
			return
		}
	}
	if raw, ok := c.GetQuery("size"); ok {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			respondError(c, apperr.Validation("size must be a positive integer, got %q", raw))
			return
		}
	}
	c.Next()
}

func validateApproved(c *gin.Context) {
	raw := c.Query("approved")
	if _, err := strconv.ParseBool(raw); err != nil {
		respondError(c, apperr.InvalidRequest("query parameter approved must be true or false, got %q", raw))
		return
	}
	c.Next()
}

func respondError(c *gin.Context, err error) {
	status, body := apperr.BodyOf(err)
	c.AbortWithStatusJSON(status, body)
}
