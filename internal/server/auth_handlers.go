package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"neighborly/internal/models"
)

const tokenTTL = 7 * 24 * time.Hour

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Building string `json:"building"`
		Block    string `json:"block"`
		Floor    string `json:"floor"`
		RoomNo   string `json:"room_no"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Building == "" || req.Block == "" {
		return models.RespondWithError(c, models.NewValidationError("Name, email, building, and block are required"))
	}
	if len(req.Password) < 8 {
		return models.RespondWithError(c, models.NewValidationError("Password must be at least 8 characters"))
	}

	if _, err := s.userRepo.GetByEmail(c.Context(), req.Email); err == nil {
		return models.RespondWithError(c, models.NewConflictError("Email already registered"))
	} else {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code != models.CodeNotFound {
			return models.RespondWithError(c, err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewDependencyError(err))
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Building: req.Building,
		Block:    req.Block,
		Floor:    req.Floor,
		RoomNo:   req.RoomNo,
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewDependencyError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token, "user": user})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid email or password"))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid email or password"))
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewDependencyError(err))
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

func (s *Server) issueToken(userID uint) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
