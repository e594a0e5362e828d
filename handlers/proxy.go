package handlers

import (
	"io"
	"net/http"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/domain"
	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/service"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Proxy relays any request that matched no named route to the client's sticky
// backend. A client with no usable pin is bound to a random healthy backend
// and the sticky cookie is attached on that first assignment only. The target
// is captured here, before the outbound call suspends; it is never
// re-validated, so a backend deleted mid-flight fails this one call with 502
// instead of corrupting shared state.
func (h *HTTPServer) Proxy(ectx echo.Context) error {
	clientID := ""
	if cookie, err := ectx.Cookie(SessionCookieName); err == nil {
		clientID = cookie.Value
	}

	var backend domain.Backend
	var pinned bool
	if clientID != "" {
		if backendID, ok := h.sessions.Resolve(clientID); ok {
			backend, pinned = h.registry.Get(backendID)
		}
	}

	mintedCookie := false
	if !pinned {
		target, ok := service.PickRandomBackend(h.registry.ListHealthy())
		if !ok {
			h.metrics.ProxiedRequests.WithLabelValues("no_backend").Inc()
			return service.NewNoBackendsAvailableError("no healthy backend available")
		}
		backend = target
		if clientID == "" {
			clientID = uuid.NewString()
			mintedCookie = true
		}
		h.sessions.Bind(clientID, backend.ID)
	}

	resp, err := h.upstream.Forward(ectx.Request(), backend.Host, backend.Port)
	if err != nil {
		h.metrics.ProxiedRequests.WithLabelValues("upstream_error").Inc()
		level.Error(h.logger).Log("msg", "proxy upstream failure", "backend", backend.ID, "err", err)
		return ectx.String(http.StatusBadGateway, "upstream unreachable")
	}
	defer resp.Body.Close()

	header := ectx.Response().Header()
	for k, values := range resp.Header {
		for _, v := range values {
			header.Add(k, v)
		}
	}
	if mintedCookie {
		ectx.SetCookie(&http.Cookie{
			Name:     SessionCookieName,
			Value:    clientID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	ectx.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(ectx.Response().Writer, resp.Body); err != nil {
		// Headers are already out; nothing to do but log the truncated relay.
		level.Error(h.logger).Log("msg", "proxy body relay failed", "backend", backend.ID, "err", err)
		return nil
	}

	h.metrics.ProxiedRequests.WithLabelValues("ok").Inc()
	return nil
}
