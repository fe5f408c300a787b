package models

import "time"

// OAuthCredential is the per-session token set. It never touches the relational store.
type OAuthCredential struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"-"`
	Scopes       []string  `json:"scopes"`
}

type AuthorizationRequest struct {
	URL   string `json:"authorization_url"`
	State string `json:"state"`
}

type AuthStatus struct {
	Authenticated   bool `json:"authenticated"`
	HasRefreshToken bool `json:"has_refresh_token"`
}

type Playlist struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	ThumbnailURL      string `json:"thumbnailUrl"`
	ItemCount         int64  `json:"itemCount"`
	YouTubePlaylistID string `json:"youtubePlaylistId"`
}

type PlaylistVideo struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	Position     int64  `json:"position"`
}

type Video struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
}

type VideoDetails struct {
	Video
	Duration  string `json:"duration"`
	ViewCount uint64 `json:"viewCount"`
}

// OAuthCallback carries the query parameters the provider redirects back with.
type OAuthCallback struct {
	State string
	Code  string
	Error string
}
