package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUsername extracts the subject injected by the Auth middleware. An empty
// value means the middleware did not run or the token carried no subject;
// either way the request is not authenticated.
func ctxUsername(c echo.Context) (string, error) {
	username, _ := c.Get("username").(string)
	if username == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return username, nil
}
