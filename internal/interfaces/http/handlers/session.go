// internal/interfaces/http/handlers/session.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/premiumdrop/storefront/internal/config"
)

const sessionCookie = "session_id"

// getOrCreateSessionID gets session ID from cookie or creates a new one. The
// cookie lives as long as the cart it points to.
func getOrCreateSessionID(c *gin.Context, cfg *config.Config) string {
	sessionID, err := c.Cookie(sessionCookie)
	if err == nil {
		if _, perr := uuid.Parse(sessionID); perr == nil {
			return sessionID
		}
	}

	sessionID = uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sessionID, int(cfg.Store.CartTTL.Seconds()), "/", "", cfg.IsProduction(), true)
	return sessionID
}

// parseProductID reads the :id path parameter, answering 400 when malformed
func parseProductID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return 0, false
	}
	return id, true
}
