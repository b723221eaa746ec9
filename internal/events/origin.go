package events

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// LoopbackOrigin reports whether the request carries no Origin header or one
// that points at this machine. Browsers always send Origin on cross-site
// websocket and fetch requests.
func LoopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
