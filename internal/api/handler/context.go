package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pivotalflow/platform-api/internal/core/ports"
)

// ctxActor extracts the acting user from the claims injected by the Auth
// middleware and fast-fails before any service call: both user_id and org_id
// must be present — a token without them is structurally valid but
// operationally unusable, so reject with 401.
func ctxActor(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get("user_id").(string)
	orgID, _ := c.Get("org_id").(string)
	if userID == "" || orgID == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{UserID: userID, OrganizationID: orgID}, nil
}
