package api

import (
	"net/http" // HTTP status codes

	"bingo_ledger/internal/apperrors"  // Error kinds
	"bingo_ledger/internal/domain"     // Importing domain models
	"bingo_ledger/internal/middleware" // Authenticated caller
	"bingo_ledger/internal/service"    // Business operations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money amounts
)

// UpdateUserRequest is a partial update. Absent fields are left untouched.
type UpdateUserRequest struct {
	ID               uint             `json:"id" binding:"required"`                       // Target user
	Phone            *string          `json:"phone"`                                       // New phone
	Region           *string          `json:"region"`                                      // New region
	City             *string          `json:"city"`                                        // New city
	Name             *string          `json:"name"`                                        // New name
	Role             *string          `json:"role" binding:"omitempty,role"`               // New role
	ParentID         *uint            `json:"parent_id"`                                   // New parent
	CreatedBy        *uint            `json:"created_by"`                                  // New creator
	RemainingBalance *decimal.Decimal `json:"remaining_balance" binding:"omitempty,gte=0"` // New spendable balance
	TotalBalance     *decimal.Decimal `json:"total_balance" binding:"omitempty,gte=0"`     // New credited balance
	Password         *string          `json:"password"`                                    // New password, empty keeps the old one
}

// CreateUserHandler creates a user below the caller
func CreateUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		user, err := users.Create(c.Request.Context(), middleware.Actor(c), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user_id": user.ID})
	}
}

// ListUsersHandler lists users of one role, or every user when role is empty
func ListUsersHandler(users *service.UserService, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			list []domain.User
			err  error
		)
		if role == "" {
			list, err = users.ListAll(c.Request.Context(), middleware.Actor(c))
		} else {
			list, err = users.ListByRole(c.Request.Context(), middleware.Actor(c), role)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// MeHandler returns the caller's own record
func MeHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Me(c.Request.Context(), middleware.Actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// MyChildrenHandler lists the users directly below the caller
func MyChildrenHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.Actor(c)
		list, err := users.Children(c.Request.Context(), actor, actor.ID, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ChildrenHandler lists the users of one role directly below the user in the path
func ChildrenHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := domain.ParseRole(c.Param("role"))
		if !ok {
			respondError(c, apperrors.InvalidInput("role must be one of manager, superagent, user"))
			return
		}
		parentID, ok := parseID(c, "id")
		if !ok {
			respondError(c, apperrors.InvalidInput("id must be a positive integer"))
			return
		}
		list, err := users.Children(c.Request.Context(), middleware.Actor(c), parentID, &role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// UpdateUserHandler applies a partial update and returns the stored result
func UpdateUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		in := service.UpdateUserInput{
			ID:               req.ID,
			Phone:            req.Phone,
			Password:         req.Password,
			Name:             req.Name,
			Region:           req.Region,
			City:             req.City,
			ParentID:         req.ParentID,
			CreatedBy:        req.CreatedBy,
			RemainingBalance: req.RemainingBalance,
			TotalBalance:     req.TotalBalance,
		}
		if req.Role != nil {
			role, _ := domain.ParseRole(*req.Role) // Validated by the role tag
			in.Role = &role
		}
		user, err := users.Update(c.Request.Context(), middleware.Actor(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
