package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// ProfilePath is the safe page for denied vendor operations
const ProfilePath = "/profile/"

// respondError translates a service error into the response for its kind.
// denied is where browsers land on an authorization failure.
func respondError(c *gin.Context, logger *logrus.Logger, err error, denied string) {
	kind := apperror.KindOf(err)
	message := apperror.MessageOf(err)

	switch kind {
	case apperror.KindAuthentication:
		middleware.AbortUnauthenticated(c)
		return

	case apperror.KindAuthorization:
		if middleware.IsAJAX(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": message})
			return
		}
		if denied == "" {
			denied = "/"
		}
		c.Redirect(http.StatusFound, denied+"?warning="+url.QueryEscape(message))
		c.Abort()
		return

	case apperror.KindValidation:
		body := gin.H{"success": false, "error": message}
		if field := apperror.FieldOf(err); field != "" {
			body["field"] = field
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
		return

	case apperror.KindDomain:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
		return

	case apperror.KindNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": message})
		return

	case apperror.KindConflict:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "error": message})
		return
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
	})
	if kind == apperror.KindExternal {
		entry.Error("external service failure")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": message})
		return
	}
	entry.Error("unexpected error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong, please try again"})
}

// errInvalidID is reported for malformed path identifiers
var errInvalidID = apperror.NotFound("resource not found")

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// bindError reports a malformed request body as a validation error
func bindError(err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperror.Wrap(apperror.KindValidation, "invalid request data", err)
}

// currentUser returns the authenticated user id or the authentication error
func currentUser(c *gin.Context) (uint, error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return 0, apperror.ErrAuthenticationRequired
	}
	return userID, nil
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
