package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard/internal/services"
)

const internalErrorMessage = "internal server error"

// parseID reads a positive integer path parameter, answering 400 itself when it is not one.
func parseID(c *gin.Context, param string, log *logrus.Entry) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.Infof("[bad-id] %s=%q", param, raw)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 itself on malformed JSON.
func bindJSON(c *gin.Context, dst any, log *logrus.Entry) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Infof("[bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// errorStatus maps a service error onto its HTTP status and client-facing message.
// Storage and unexpected faults never expose their text.
func errorStatus(err error) (int, string) {
	var (
		verr *services.ValidationError
		nf   *services.NotFoundError
		up   *services.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.As(err, &up):
		return http.StatusBadGateway, up.Error()
	case errors.Is(err, services.ErrOAuthNotConfigured):
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, internalErrorMessage
}

func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("[err] %v", err)
	} else {
		log.Infof("[%d] %v", status, err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func optionalQuery(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok && v != "" {
		return &v
	}
	return nil
}
