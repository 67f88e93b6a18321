package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
	"github.com/fintrellis/ledgercore/internal/platform/config"
)

// authHandler mints development tokens. Production deployments receive
// tokens from the upstream identity service, so these routes are only
// registered outside production.
type authHandler struct {
	jwtSecret   string
	jwtIssuer   string
	jwtDuration time.Duration
}

func newAuthHandler(cfg *config.Config) *authHandler {
	return &authHandler{
		jwtSecret:   cfg.JWTSecret,
		jwtIssuer:   cfg.JWTIssuer,
		jwtDuration: cfg.JWTExpiryDuration,
	}
}

// mintToken godoc
// @Summary Mint a development JWT
// @Description Issues a signed token for the given user ID. Not available in production.
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.MintTokenRequest true "Subject"
// @Success 200 {object} dto.MintTokenResponse
// @Router /auth/token [post]
func (h *authHandler) mintToken(c *gin.Context) {
	var req dto.MintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    h.jwtIssuer,
		Subject:   req.UserID,
		ExpiresAt: jwt.NewNumericDate(now.Add(h.jwtDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to sign JWT token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, dto.MintTokenResponse{Token: signed})
}

// registerAuthRoutes registers the development token route
func registerAuthRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		return
	}
	h := newAuthHandler(cfg)
	r.POST("/auth/token", h.mintToken)
}
