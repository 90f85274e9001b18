package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/repositories"
	"voicehire/internal/utils"
)

// AuthHandler manages HR authentication endpoints.
type AuthHandler struct {
	Repo      *repositories.UserRepository
	JWTSecret string
	TokenTTL  time.Duration
}

func NewAuthHandler(repo *repositories.UserRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{Repo: repo, JWTSecret: jwtSecret, TokenTTL: 24 * time.Hour}
}

type authResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

type userSummary struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterHandler creates an HR account. Routed under /api/admin so only an
// operator can provision reviewers.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.RegisterRequest](r)

	if existing, err := h.Repo.GetUserByEmail(req.Email); err == nil && existing != nil {
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code: "email_taken", Message: "an account with this email already exists",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "hash_failed", Message: "failed to hash password",
		})
		return
	}
	user := &models.User{Email: req.Email, PasswordHash: string(hash)}
	if err := h.Repo.CreateUser(user); err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "create_failed", Message: "failed to create user",
		})
		return
	}
	utils.JSON(w, http.StatusCreated, userSummary{ID: user.ID, Email: user.Email, Role: user.Role})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	user, err := h.Repo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
				Code: "invalid_credentials", Message: "invalid email or password",
			})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to look up user",
		})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code: "invalid_credentials", Message: "invalid email or password",
		})
		return
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(h.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.JWTSecret))
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "sign_failed", Message: "failed to sign token",
		})
		return
	}
	utils.JSON(w, http.StatusOK, authResponse{
		Token: signed,
		User:  userSummary{ID: user.ID, Email: user.Email, Role: user.Role},
	})
}
