package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jotly/internal/models"
	"jotly/internal/observability"
	"jotly/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Register handles POST /api/v1/users/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Username = strings.TrimSpace(req.Username)

	// Validate input
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	// Check if username or email is already taken
	existing, err := s.userRepo.GetByEmailOrUsername(c.Context(), req.Email, req.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Username or email already exists"))
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	if createErr := s.userRepo.Create(c.Context(), user); createErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, createErr)
	}

	return models.Respond(c, fiber.StatusCreated, "User created successfully", user)
}

// Login handles POST /api/v1/users/login. The identifier may be an email or a
// username; on success both credentials are issued and set as cookies.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Email == "" && req.Username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email or username is required"))
	}
	if req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password is required"))
	}

	user, err := s.userRepo.GetByEmailOrUsername(c.Context(), req.Email, req.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", req.Email+req.Username))
	}

	// Compare password
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		observability.AuthFailuresTotal.WithLabelValues("bad_password").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid password"))
	}

	accessToken, refreshToken, err := s.issueTokenPair(c, user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.setAuthCookies(c, accessToken, refreshToken)

	return models.Respond(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout handles POST /api/v1/users/logout. Clearing an already-empty refresh
// slot is a no-op, so repeated logouts succeed.
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userRepo.UpdateRefreshToken(c.Context(), userID, ""); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.clearAuthCookies(c)

	return models.Respond(c, fiber.StatusOK, "User logged out", nil)
}

// RefreshToken handles POST /api/v1/users/refresh-token. The presented
// credential must exactly match the single slot stored on the user record;
// anything rotated out is rejected. Verification failures carry their cause so
// clients can distinguish an expired token from a revoked one.
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	incoming := c.Cookies("refreshToken")
	if incoming == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.BodyParser(&req); err == nil {
			incoming = req.RefreshToken
		}
	}
	if incoming == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Refresh token is required"))
	}

	token, err := jwt.Parse(incoming, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.RefreshTokenSecret), nil
	})
	if err != nil || !token.Valid {
		observability.AuthFailuresTotal.WithLabelValues("refresh_invalid").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewTokenError("Token refresh failed", err))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token claims"))
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid subject claim"))
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid user ID in token"))
	}

	user, err := s.userRepo.GetByID(c.Context(), uint(userID))
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token is invalid or user not found"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if user.RefreshToken != incoming {
		observability.AuthFailuresTotal.WithLabelValues("refresh_reuse").Inc()
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Refresh token is expired or already used"))
	}

	accessToken, refreshToken, err := s.issueTokenPair(c, user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.setAuthCookies(c, accessToken, refreshToken)
	observability.TokenRotationsTotal.Inc()

	return models.Respond(c, fiber.StatusOK, "Access token refreshed successfully", fiber.Map{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// issueTokenPair generates a fresh access/refresh credential pair and persists
// the refresh token on the user record, overwriting any prior value. A persist
// failure is surfaced, never masked: issuing a token the server did not record
// would break rotation.
func (s *Server) issueTokenPair(c *fiber.Ctx, user *models.User) (string, string, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", models.NewInternalError(err)
	}
	refreshToken, err := s.generateRefreshToken(user.ID)
	if err != nil {
		return "", "", models.NewInternalError(err)
	}

	if err := s.userRepo.UpdateRefreshToken(c.Context(), user.ID, refreshToken); err != nil {
		return "", "", err
	}
	user.RefreshToken = refreshToken

	return accessToken, refreshToken, nil
}

// generateAccessToken creates the short-lived credential carrying identity claims.
func (s *Server) generateAccessToken(user *models.User) (string, error) {
	if s.config.AccessTokenSecret == "" {
		return "", fmt.Errorf("access token secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10), // Subject (user ID as string)
		"email":    user.Email,
		"username": user.Username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(time.Duration(s.config.AccessTokenTTLMin) * time.Minute).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

// generateRefreshToken creates the long-lived credential carrying only the user ID.
func (s *Server) generateRefreshToken(userID uint) (string, error) {
	if s.config.RefreshTokenSecret == "" {
		return "", fmt.Errorf("refresh token secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(time.Duration(s.config.RefreshTokenTTLHrs) * time.Hour).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.RefreshTokenSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// setAuthCookies attaches both credentials as hardened cookies. The cookie
// Max-Age (24h by default) is deliberately shorter than the refresh token's
// own validity; the refresh endpoint also accepts the token in the body.
func (s *Server) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	maxAge := s.config.CookieMaxAgeSec
	if maxAge <= 0 {
		maxAge = 24 * 60 * 60
	}

	for name, value := range map[string]string{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   maxAge,
			Secure:   true,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
}

// clearAuthCookies expires both credential cookies.
func (s *Server) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Now().Add(-time.Hour),
			MaxAge:   -1,
			Secure:   true,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
}
