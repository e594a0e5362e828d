package handlers

import (
	"net/http"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/service"

	"github.com/labstack/echo/v4"
)

// dashboardHTML is the minimal operator view; the real UI polls /api/stats.
const dashboardHTML = `<!DOCTYPE html>
<html>
<head><title>Gateway Dashboard</title></head>
<body>
<h1>Gateway Dashboard</h1>
<pre id="stats">loading...</pre>
<script>
async function refresh() {
  const res = await fetch('/api/stats');
  document.getElementById('stats').textContent = JSON.stringify(await res.json(), null, 2);
}
refresh();
setInterval(refresh, 5000);
</script>
</body>
</html>
`

// DashboardLogin (POST /api/login) checks the shared secret and mints an
// operator session. The token is returned in the body and set as an HttpOnly
// cookie for subsequent dashboard calls.
func (h *HTTPServer) DashboardLogin(ectx echo.Context) error {
	var req LoginRequest
	if err := ectx.Bind(&req); err != nil {
		return service.NewBadParameterError("invalid request body", err)
	}

	token, err := h.dashboard.Login(req.AuthKey)
	if err != nil {
		return err
	}

	ectx.SetCookie(&http.Cookie{
		Name:     DashboardCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ectx.JSON(http.StatusOK, LoginResponse{Success: true, SessionToken: token})
}

// DashboardLogout (POST /api/logout) drops the operator session and clears
// the cookie. Succeeds even without a valid session.
func (h *HTTPServer) DashboardLogout(ectx echo.Context) error {
	if cookie, err := ectx.Cookie(DashboardCookieName); err == nil && cookie.Value != "" {
		h.dashboard.Logout(cookie.Value)
	}
	ectx.SetCookie(&http.Cookie{
		Name:     DashboardCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ectx.JSON(http.StatusOK, LogoutResponse{Success: true})
}

// validateDashboardCookie checks the operator session cookie, sliding its
// expiry on success.
func (h *HTTPServer) validateDashboardCookie(ectx echo.Context) error {
	cookie, err := ectx.Cookie(DashboardCookieName)
	if err != nil || cookie.Value == "" {
		return service.NewUnauthorizedError("missing dashboard session")
	}
	return h.dashboard.Validate(cookie.Value)
}

// DashboardStats (GET /api/stats) returns aggregated registry and session
// statistics for the operator view. Requires a valid dashboard session.
func (h *HTTPServer) DashboardStats(ectx echo.Context) error {
	if err := h.validateDashboardCookie(ectx); err != nil {
		return err
	}

	now := h.clock.Now()
	timeout := h.registry.ServerTimeout()
	backends := h.registry.ListAll()
	healthy := h.registry.ListHealthy()

	servers := make([]DashboardServer, 0, len(backends))
	for _, b := range backends {
		servers = append(servers, toDashboardServer(b, now, timeout))
	}
	return ectx.JSON(http.StatusOK, StatsResponse{
		Timestamp:           now.UnixMilli(),
		TotalServers:        len(backends),
		HealthyServers:      len(healthy),
		TotalActiveSessions: h.sessions.Count(),
		TotalMigrations:     h.engine.TotalMigrations(),
		RecentMigrations:    h.engine.RecentRecords(recentMigrationsLimit),
		Servers:             servers,
	})
}

// DashboardView (GET /dashboard) serves the HTML operator view. Unlike the
// JSON API, an unauthenticated browser is redirected rather than given a 401.
func (h *HTTPServer) DashboardView(ectx echo.Context) error {
	if err := h.validateDashboardCookie(ectx); err != nil {
		return ectx.Redirect(http.StatusFound, "/")
	}
	return ectx.HTML(http.StatusOK, dashboardHTML)
}
