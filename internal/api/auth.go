package api

import (
	"net/http" // HTTP status codes

	"bingo_ledger/internal/domain"  // Importing domain models
	"bingo_ledger/internal/service" // Business operations

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Content types
)

// LoginRequest is the JSON login body
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`    // Phone must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// loginForm is the OAuth2 password-grant form, where the phone travels as username
type loginForm struct {
	Username string `form:"username" binding:"required"` // Phone number
	Password string `form:"password" binding:"required"` // Password
}

// CreateUserRequest is the body of both create endpoints
type CreateUserRequest struct {
	Phone    string `json:"phone" binding:"required"`     // Login phone
	Password string `json:"password" binding:"required"`  // Plaintext password
	Name     string `json:"name"`                         // Display name
	Region   string `json:"region"`                       // Region
	City     string `json:"city"`                         // City
	Role     string `json:"role" binding:"required,role"` // Role of the new user
	ParentID *uint  `json:"parent_id"`                    // Optional parent, defaults to the caller
}

func (r CreateUserRequest) input() service.CreateUserInput {
	role, _ := domain.ParseRole(r.Role) // Validated by the role tag
	return service.CreateUserInput{
		Phone:    r.Phone,
		Password: r.Password,
		Name:     r.Name,
		Region:   r.Region,
		City:     r.City,
		Role:     role,
		ParentID: r.ParentID,
	}
}

// LoginHandler authenticates a user and returns a bearer token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var phone, password string
		switch c.ContentType() {
		case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
			var form loginForm // Bind form request to struct
			if err := c.ShouldBind(&form); err != nil {
				respondError(c, bindError(err))
				return
			}
			phone, password = form.Username, form.Password
		default:
			var req LoginRequest // Bind JSON request to struct
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, bindError(err))
				return
			}
			phone, password = req.Phone, req.Password
		}
		res, err := auth.Login(c.Request.Context(), phone, password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res) // Return the token and the user
	}
}

// BootstrapHandler creates a user without authentication. Mounted only when bootstrap is enabled.
func BootstrapHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		user, err := users.Bootstrap(c.Request.Context(), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "phone": user.Phone})
	}
}
