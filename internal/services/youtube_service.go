package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"dashboard/internal/config"
	"dashboard/internal/models"
	"dashboard/internal/session"
	"dashboard/internal/utils"
)

const (
	musicCategoryID   = "10"
	maxProviderItems  = 50
	defaultSearchSize = 10
	unknownChannel    = "Unknown"
)

var ErrOAuthNotConfigured = errors.New("youtube oauth client is not configured")

// YouTubeService drives the authorization-code flow for one session at a time and proxies
// a few YouTube Data API calls. Credentials live only in the session passed in. The proxy
// calls never modify the session; when they had to refresh the access token they return
// the renewed credential and the caller decides whether to store it.
type YouTubeService interface {
	BeginAuthorization(sess *session.Session) (*models.AuthorizationRequest, error)
	CompleteAuthorization(ctx context.Context, sess *session.Session, cb models.OAuthCallback) error
	Status(sess *session.Session) models.AuthStatus
	Revoke(sess *session.Session)

	ListPlaylists(ctx context.Context, sess *session.Session) ([]models.Playlist, *models.OAuthCredential, error)
	ListPlaylistItems(ctx context.Context, sess *session.Session, playlistID string) ([]models.PlaylistVideo, *models.OAuthCredential, error)
	SearchVideos(ctx context.Context, query string, maxResults int64) ([]models.Video, error)
	GetVideoDetails(ctx context.Context, videoID string) (*models.VideoDetails, error)
}

type youTubeService struct {
	oauth   *oauth2.Config
	apiKey  string
	baseURL string
	log     *logrus.Logger
}

func NewYouTubeService(cfg config.YouTubeConfig, log *logrus.Logger) YouTubeService {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	return &youTubeService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		log:     log,
	}
}

func (s *youTubeService) BeginAuthorization(sess *session.Session) (*models.AuthorizationRequest, error) {
	if s.oauth.ClientID == "" {
		return nil, ErrOAuthNotConfigured
	}
	state, err := utils.NewStateToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	sess.State = state

	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return &models.AuthorizationRequest{URL: url, State: state}, nil
}

// CompleteAuthorization consumes the pending state whatever the outcome, so a state value
// can be redeemed at most once.
func (s *youTubeService) CompleteAuthorization(ctx context.Context, sess *session.Session, cb models.OAuthCallback) error {
	expected := sess.State
	sess.State = ""

	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(cb.State)) != 1 {
		return invalid("state", "does not match the authorization request")
	}
	if cb.Error != "" {
		return invalid("error", cb.Error)
	}
	if cb.Code == "" {
		return invalid("code", "is required")
	}

	tok, err := s.oauth.Exchange(ctx, cb.Code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.ErrorDescription != "" {
			return &UpstreamError{Message: rerr.ErrorDescription, Err: err}
		}
		return &UpstreamError{Message: err.Error(), Err: err}
	}

	sess.Credential = s.credentialFromToken(tok, nil)
	sess.Permanent = true
	return nil
}

func (s *youTubeService) Status(sess *session.Session) models.AuthStatus {
	cred := sess.Credential
	return models.AuthStatus{
		Authenticated:   cred != nil,
		HasRefreshToken: cred != nil && cred.RefreshToken != "",
	}
}

func (s *youTubeService) Revoke(sess *session.Session) {
	sess.Credential = nil
}

func (s *youTubeService) ListPlaylists(ctx context.Context, sess *session.Session) ([]models.Playlist, *models.OAuthCredential, error) {
	yt, renewed, err := s.userClient(ctx, sess)
	if err != nil {
		return nil, nil, err
	}
	resp, err := yt.Playlists.List([]string{"snippet", "contentDetails"}).
		Mine(true).
		MaxResults(maxProviderItems).
		Context(ctx).
		Do()
	if err != nil {
		return nil, nil, providerError(err)
	}

	playlists := make([]models.Playlist, 0, len(resp.Items))
	for _, item := range resp.Items {
		p := models.Playlist{ID: item.Id, YouTubePlaylistID: item.Id}
		if item.Snippet != nil {
			p.Title = item.Snippet.Title
			p.Description = item.Snippet.Description
			p.ThumbnailURL = mediumThumbnail(item.Snippet.Thumbnails)
		}
		if item.ContentDetails != nil {
			p.ItemCount = item.ContentDetails.ItemCount
		}
		playlists = append(playlists, p)
	}
	return playlists, renewed, nil
}

func (s *youTubeService) ListPlaylistItems(ctx context.Context, sess *session.Session, playlistID string) ([]models.PlaylistVideo, *models.OAuthCredential, error) {
	yt, renewed, err := s.userClient(ctx, sess)
	if err != nil {
		return nil, nil, err
	}
	resp, err := yt.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(maxProviderItems).
		Context(ctx).
		Do()
	if err != nil {
		return nil, nil, providerError(err)
	}

	videos := make([]models.PlaylistVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := models.PlaylistVideo{ChannelTitle: unknownChannel}
		if item.ContentDetails != nil {
			v.VideoID = item.ContentDetails.VideoId
		}
		if sn := item.Snippet; sn != nil {
			v.Title = sn.Title
			v.Description = sn.Description
			v.Thumbnail = mediumThumbnail(sn.Thumbnails)
			v.Position = sn.Position
			if sn.ChannelTitle != "" {
				v.ChannelTitle = sn.ChannelTitle
			}
		}
		videos = append(videos, v)
	}
	return videos, renewed, nil
}

// SearchVideos runs a public music-category search with the server API key.
// maxResults is clamped to 1..50; zero means the default of 10.
func (s *youTubeService) SearchVideos(ctx context.Context, query string, maxResults int64) ([]models.Video, error) {
	if query == "" {
		return nil, invalid("q", "query parameter required")
	}
	yt, err := s.keyClient(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := yt.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(clampResults(maxResults)).
		VideoCategoryId(musicCategoryID).
		Order("relevance").
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError(err)
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := models.Video{ChannelTitle: unknownChannel}
		if item.Id != nil {
			v.VideoID = item.Id.VideoId
		}
		if sn := item.Snippet; sn != nil {
			v.Title = sn.Title
			v.Description = sn.Description
			v.Thumbnail = mediumThumbnail(sn.Thumbnails)
			if sn.ChannelTitle != "" {
				v.ChannelTitle = sn.ChannelTitle
			}
		}
		videos = append(videos, v)
	}
	return videos, nil
}

func (s *youTubeService) GetVideoDetails(ctx context.Context, videoID string) (*models.VideoDetails, error) {
	yt, err := s.keyClient(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := yt.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError(err)
	}
	if len(resp.Items) == 0 {
		return nil, notFound("video")
	}

	item := resp.Items[0]
	d := &models.VideoDetails{Video: models.Video{VideoID: item.Id, ChannelTitle: unknownChannel}}
	if sn := item.Snippet; sn != nil {
		d.Title = sn.Title
		d.Description = sn.Description
		d.Thumbnail = mediumThumbnail(sn.Thumbnails)
		if sn.ChannelTitle != "" {
			d.ChannelTitle = sn.ChannelTitle
		}
	}
	if item.ContentDetails != nil {
		d.Duration = item.ContentDetails.Duration
	}
	if item.Statistics != nil {
		d.ViewCount = item.Statistics.ViewCount
	}
	return d, nil
}

// userClient builds an API client for the session's credential. An expired access token is
// refreshed first; renewed is non-nil only when that happened.
func (s *youTubeService) userClient(ctx context.Context, sess *session.Session) (yt *youtube.Service, renewed *models.OAuthCredential, err error) {
	cred := sess.Credential
	if cred == nil || cred.AccessToken == "" {
		return nil, nil, ErrUnauthorized
	}

	current := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
	}
	tok, err := s.oauth.TokenSource(ctx, current).Token()
	if err != nil {
		s.log.WithField("operation", "services.YouTube.refresh").Warnf("[youtube][refresh][err] %v", err)
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if tok.AccessToken != cred.AccessToken {
		s.log.WithField("operation", "services.YouTube.refresh").Debug("[youtube][refresh] access token renewed")
		renewed = s.credentialFromToken(tok, cred)
	}

	yt, err = s.newClient(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, nil, err
	}
	return yt, renewed, nil
}

func (s *youTubeService) keyClient(ctx context.Context) (*youtube.Service, error) {
	if s.apiKey == "" {
		return s.newClient(ctx, option.WithoutAuthentication())
	}
	return s.newClient(ctx, option.WithAPIKey(s.apiKey))
}

func (s *youTubeService) newClient(ctx context.Context, opts ...option.ClientOption) (*youtube.Service, error) {
	if s.baseURL != "" {
		opts = append(opts, option.WithEndpoint(s.baseURL))
	}
	yt, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube client: %w", err)
	}
	return yt, nil
}

// credentialFromToken keeps the previous refresh token when the provider omits it on refresh.
func (s *youTubeService) credentialFromToken(tok *oauth2.Token, prev *models.OAuthCredential) *models.OAuthCredential {
	cred := &models.OAuthCredential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		TokenURI:     s.oauth.Endpoint.TokenURL,
		ClientID:     s.oauth.ClientID,
		ClientSecret: s.oauth.ClientSecret,
		Scopes:       append([]string(nil), s.oauth.Scopes...),
	}
	if cred.RefreshToken == "" && prev != nil {
		cred.RefreshToken = prev.RefreshToken
	}
	return cred
}

func providerError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Error()
		}
		if gerr.Code == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return &UpstreamError{Message: msg, Err: err}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return fmt.Errorf("youtube request: %w", err)
}

func mediumThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil || t.Medium == nil {
		return ""
	}
	return t.Medium.Url
}

func clampResults(n int64) int64 {
	switch {
	case n == 0:
		return defaultSearchSize
	case n < 1:
		return 1
	case n > maxProviderItems:
		return maxProviderItems
	}
	return n
}
