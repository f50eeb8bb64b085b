package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/content"
	"github.com/storefront-apps/contentsets/internal/logging"
)

// ShopContextKey holds the shop verified from a session token.
const ShopContextKey = "shop"

// resolveShop returns the shop for the request. A verified session shop
// wins; an explicit shop that disagrees with it is rejected.
func resolveShop(c *gin.Context, explicit string) (string, bool) {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if value, exists := c.Get(ShopContextKey); exists {
		sessionShop, _ := value.(string)
		if explicit != "" && explicit != sessionShop {
			c.JSON(http.StatusForbidden, gin.H{"error": "shop does not match session"})
			return "", false
		}
		return sessionShop, true
	}
	if explicit == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop is required"})
		return "", false
	}
	return explicit, true
}

// respondContentError maps service errors onto HTTP responses.
func respondContentError(c *gin.Context, err error) {
	var validationErr *content.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}
	log.WithError(err).WithField("request_id", logging.GetGinRequestID(c)).Error("content request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}

// respondBindError reports a request body that could not be decoded or bound.
func respondBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		field := validationErrs[0]
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", lowerFirst(field.Field()))})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// flexInt decodes a JSON number or numeric string.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = flexInt{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexInt{}
			return nil
		}
		trimmed = []byte(s)
	}
	n, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", trimmed)
	}
	*f = flexInt{value: int(n), set: true}
	return nil
}

// Value returns the decoded value and whether the field was present.
func (f flexInt) Value() (int, bool) { return f.value, f.set }

// Or returns the decoded value, or fallback when the field was absent.
func (f flexInt) Or(fallback int) int {
	if !f.set {
		return fallback
	}
	return f.value
}
