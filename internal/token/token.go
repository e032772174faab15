package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fanmarket/shop/internal/models"
)

// Service issues and resolves the opaque per-user auth tokens. A user gets
// exactly one key, handed back unchanged on every login.
type Service struct {
	DB *gorm.DB
}

func GenerateKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: rand failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *Service) Issue(userID uint) (string, error) {
	var existing models.AuthToken
	err := s.DB.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return existing.Key, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("token: db error: %w", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	t := models.AuthToken{Key: key, UserID: userID}
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&t)
	if res.Error != nil {
		return "", fmt.Errorf("token: db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// lost the insert race to a concurrent login, take theirs
		if err := s.DB.Where("user_id = ?", userID).First(&existing).Error; err != nil {
			return "", fmt.Errorf("token: db error: %w", err)
		}
		return existing.Key, nil
	}
	return key, nil
}

// RequireToken resolves the Authorization header against stored tokens and
// puts the owner's id into the echo context.
func (s *Service) RequireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key, err := keyFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}

		var t models.AuthToken
		if err := s.DB.Where("key = ?", key).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		c.Set("userID", t.UserID)
		return next(c)
	}
}

func keyFromHeader(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing auth token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || (parts[0] != "Token" && parts[0] != "Bearer") {
		return "", errors.New("malformed authorization header")
	}
	if parts[1] == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}

// UserID reads the authenticated user's id set by RequireToken.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing auth token")
	}
	return id, nil
}
