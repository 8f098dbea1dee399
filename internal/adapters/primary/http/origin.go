package http

import (
	"net/netip"
	"net/url"
	"strings"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// originPolicy decides which pages may open the preview WebSocket.
// Development accepts loopback and private network hosts; production only
// the configured origins, where "*.example.com" matches any subdomain.
type originPolicy struct {
	development bool
	allowed     []string
}

func newOriginPolicy(config *entities.ServerConfig) originPolicy {
	return originPolicy{
		development: config.IsDevelopment(),
		allowed:     config.GetCORSOrigins(),
	}
}

// allows reports whether origin may connect. An empty origin is a
// same-origin or non-browser client.
func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if p.development {
		return localHost(u.Hostname())
	}
	return p.listed(u)
}

func (p originPolicy) listed(u *url.URL) bool {
	site := u.Scheme + "://" + u.Host
	host := u.Hostname()
	for _, allowed := range p.allowed {
		switch {
		case allowed == "*":
			return true
		case strings.HasPrefix(allowed, "*."):
			if strings.HasSuffix(host, allowed[1:]) {
				return true
			}
		case strings.TrimSuffix(allowed, "/") == site:
			return true
		}
	}
	return false
}

// localHost accepts localhost and loopback, private or link-local addresses
func localHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}
