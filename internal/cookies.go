package internal

const (
	COOKIE_ACCESS_TOKEN_NAME  = "rescue_access_token"
	COOKIE_REFRESH_TOKEN_NAME = "rescue_refresh_token"
	COOKIE_REDIRECT_NAME      = "rescue_redirect"
)
