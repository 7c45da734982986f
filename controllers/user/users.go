package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/auth"
	"github.com/shoplane/shoplane-api/middleware"
	"github.com/shoplane/shoplane-api/models"
)

// -------- Request Structs --------

type SignupInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"` // optional, defaults to customer
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// -------- Core Logic --------

// CreateUser registers a new account. The role is fixed here; there is no
// later promotion path.
func CreateUser(db *gorm.DB, input SignupInput) (*models.User, error) {
	role := models.RoleCustomer
	if input.Role != "" {
		if !models.ValidRole(input.Role) {
			return nil, apperr.InvalidInput("role must be customer or admin")
		}
		role = models.Role(input.Role)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check username", err)
	}
	if count > 0 {
		return nil, apperr.InvalidInput("username already registered")
	}
	if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if count > 0 {
		return nil, apperr.InvalidInput("email already registered")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}
	return user, nil
}

// Authenticate resolves (username, password) to a user, or Unauthorized.
// Inactive accounts cannot log in.
func Authenticate(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("incorrect username or password")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if !user.Active || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized("incorrect username or password")
	}
	return &user, nil
}

// -------- Handlers --------

// POST /auth/signup
func SignupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}

		user, err := CreateUser(db.WithContext(c.Request.Context()), input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// POST /auth/login
func LoginHandler(db *gorm.DB, tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}

		user, err := Authenticate(db.WithContext(c.Request.Context()), input.Username, input.Password)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		token, err := tm.Generate(user.ID, user.Role)
		if err != nil {
			apperr.Respond(c, apperr.Internal("failed to sign token", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
	}
}

// GET /auth/me
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.WithContext(c.Request.Context()).
			First(&user, middleware.UserIDFrom(c)).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("user", middleware.UserIDFrom(c)))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.WithContext(c.Request.Context()).
			Order("created_at desc").
			Find(&users).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to fetch users", err))
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
