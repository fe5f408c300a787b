package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard/internal/middleware"
	"dashboard/internal/models"
	"dashboard/internal/services"
	"dashboard/internal/session"
)

type YouTubeHandler struct {
	service  services.YouTubeService
	sessions *session.Manager
	log      *logrus.Logger
}

func NewYouTubeHandler(service services.YouTubeService, sessions *session.Manager, log *logrus.Logger) *YouTubeHandler {
	return &YouTubeHandler{service: service, sessions: sessions, log: log}
}

func (h *YouTubeHandler) op(name string) *logrus.Entry {
	return h.log.WithField("operation", "handlers.YouTube."+name)
}

// update writes only what fn changes back to the stored session.
func (h *YouTubeHandler) update(c *gin.Context, id string, fn func(s *session.Session), log *logrus.Entry) bool {
	if _, err := h.sessions.Update(c.Request.Context(), c.Writer, id, fn); err != nil {
		respondError(c, log, err)
		return false
	}
	return true
}

// storeRenewed keeps a refreshed access token unless the session was revoked or re-authorized
// while the proxy call was in flight.
func (h *YouTubeHandler) storeRenewed(c *gin.Context, sess *session.Session, renewed *models.OAuthCredential, log *logrus.Entry) bool {
	if renewed == nil {
		return true
	}
	replaced, err := h.sessions.ReplaceCredential(c.Request.Context(), c.Writer, sess.ID, sess.Credential, renewed)
	if err != nil {
		respondError(c, log, err)
		return false
	}
	if !replaced {
		log.Info("[youtube][refresh] credential changed meanwhile, renewed token dropped")
	}
	return true
}

// Authorize godoc
// @Summary      Start the YouTube OAuth flow
// @Description  Returns the provider URL to open in a browser popup. The state value is kept in the session.
// @Tags         youtube
// @Produce      json
// @Success      200 {object} models.AuthorizationRequest
// @Router       /api/youtube/oauth/authorize [get]
func (h *YouTubeHandler) Authorize(c *gin.Context) {
	log := h.op("authorize")
	sess := middleware.CurrentSession(c)

	req, err := h.service.BeginAuthorization(sess)
	if err != nil {
		respondError(c, log, err)
		return
	}
	if !h.update(c, sess.ID, func(s *session.Session) { s.State = req.State }, log) {
		return
	}
	log.Info("[youtube][authorize][ok] state issued")
	c.JSON(http.StatusOK, req)
}

// Callback godoc
// @Summary      OAuth redirect target
// @Description  Exchanges the code, stores the credential and answers with a page that notifies the opener window.
// @Tags         youtube
// @Produce      html
// @Param        state query string true  "state issued by authorize"
// @Param        code  query string false "authorization code"
// @Param        error query string false "provider error"
// @Success      200 {string} string "HTML page"
// @Failure      400 {string} string "HTML page"
// @Router       /api/youtube/oauth/callback [get]
func (h *YouTubeHandler) Callback(c *gin.Context) {
	log := h.op("callback")
	sess := middleware.CurrentSession(c)

	cb := models.OAuthCallback{
		State: c.Query("state"),
		Code:  c.Query("code"),
		Error: c.Query("error"),
	}

	// The pending state is taken out of the store before anything else, so it is
	// redeemed at most once even when two callbacks race.
	var pending string
	_, err := h.sessions.Update(c.Request.Context(), c.Writer, sess.ID, func(s *session.Session) {
		pending = s.State
		s.State = ""
	})
	if err != nil {
		log.Errorf("[youtube][callback][session][err] %v", err)
		callbackPage(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	sess.State = pending

	authErr := h.service.CompleteAuthorization(c.Request.Context(), sess, cb)
	if authErr == nil {
		cred, permanent := sess.Credential, sess.Permanent
		_, err := h.sessions.Update(c.Request.Context(), c.Writer, sess.ID, func(s *session.Session) {
			s.Credential = cred
			s.Permanent = permanent
		})
		if err != nil {
			log.Errorf("[youtube][callback][session][err] %v", err)
			callbackPage(c, http.StatusInternalServerError, internalErrorMessage)
			return
		}
	}

	if authErr != nil {
		status, msg := errorStatus(authErr)
		if status == http.StatusInternalServerError {
			log.Errorf("[youtube][callback][err] %v", authErr)
		} else {
			log.Warnf("[youtube][callback][%d] %v", status, authErr)
		}
		callbackPage(c, status, msg)
		return
	}
	log.Info("[youtube][callback][ok] credential stored")
	callbackPage(c, http.StatusOK, "")
}

const callbackSuccessHTML = `<html>
  <head><title>Authentication Successful</title></head>
  <body>
    <h2>Authentication successful!</h2>
    <p>You can close this window now.</p>
    <script>
      if (window.opener) {
        window.opener.postMessage('oauth_success', '*');
        setTimeout(function () { window.close(); }, 1000);
      }
    </script>
  </body>
</html>`

const callbackFailureHTML = `<html>
  <head><title>Authentication Failed</title></head>
  <body>
    <h2>Authentication failed</h2>
    <p>Error: %s</p>
    <p>You can close this window now.</p>
    <script>
      if (window.opener) {
        window.opener.postMessage('oauth_error', '*');
      }
    </script>
  </body>
</html>`

func callbackPage(c *gin.Context, status int, errMsg string) {
	body := callbackSuccessHTML
	if status != http.StatusOK {
		body = fmt.Sprintf(callbackFailureHTML, html.EscapeString(errMsg))
	}
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

// Status godoc
// @Summary      Whether this session holds a YouTube credential
// @Tags         youtube
// @Produce      json
// @Success      200 {object} models.AuthStatus
// @Router       /api/youtube/oauth/status [get]
func (h *YouTubeHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status(middleware.CurrentSession(c)))
}

// Revoke godoc
// @Summary      Forget the session's YouTube credential
// @Tags         youtube
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/youtube/oauth/revoke [post]
func (h *YouTubeHandler) Revoke(c *gin.Context) {
	log := h.op("revoke")
	sess := middleware.CurrentSession(c)
	if !h.update(c, sess.ID, h.service.Revoke, log) {
		return
	}
	log.Info("[youtube][revoke][ok]")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Credentials revoked"})
}

// Playlists godoc
// @Summary      The signed-in user's playlists
// @Tags         youtube
// @Produce      json
// @Success      200 {object} map[string][]models.Playlist
// @Failure      401 {object} map[string]string
// @Failure      502 {object} map[string]string
// @Router       /api/youtube/playlists [get]
func (h *YouTubeHandler) Playlists(c *gin.Context) {
	log := h.op("playlists")
	sess := middleware.CurrentSession(c)

	playlists, renewed, err := h.service.ListPlaylists(c.Request.Context(), sess)
	if err != nil {
		respondError(c, log, err)
		return
	}
	if !h.storeRenewed(c, sess, renewed, log) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"playlists": playlists})
}

// PlaylistItems godoc
// @Summary      Videos in one of the user's playlists
// @Tags         youtube
// @Produce      json
// @Param        id path string true "playlist id"
// @Success      200 {object} map[string][]models.PlaylistVideo
// @Failure      401 {object} map[string]string
// @Failure      502 {object} map[string]string
// @Router       /api/youtube/playlist/{id}/items [get]
func (h *YouTubeHandler) PlaylistItems(c *gin.Context) {
	log := h.op("playlistItems")
	sess := middleware.CurrentSession(c)

	videos, renewed, err := h.service.ListPlaylistItems(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	if !h.storeRenewed(c, sess, renewed, log) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// Search godoc
// @Summary      Search music videos
// @Description  Public search with the server API key; no sign-in needed.
// @Tags         youtube
// @Produce      json
// @Param        q          query string true  "search text"
// @Param        maxResults query int    false "1..50, default 10"
// @Success      200 {object} map[string][]models.Video
// @Failure      400 {object} map[string]string
// @Failure      502 {object} map[string]string
// @Router       /api/youtube/search [get]
func (h *YouTubeHandler) Search(c *gin.Context) {
	log := h.op("search")
	var maxResults int64
	if raw := c.Query("maxResults"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Debugf("[youtube][search] bad maxResults=%q, using default", raw)
		} else {
			maxResults = n
		}
	}

	videos, err := h.service.SearchVideos(c.Request.Context(), c.Query("q"), maxResults)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// Video godoc
// @Summary      Details for one video
// @Tags         youtube
// @Produce      json
// @Param        id path string true "video id"
// @Success      200 {object} models.VideoDetails
// @Failure      404 {object} map[string]string
// @Failure      502 {object} map[string]string
// @Router       /api/youtube/video/{id} [get]
func (h *YouTubeHandler) Video(c *gin.Context) {
	log := h.op("video")
	video, err := h.service.GetVideoDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, video)
}
