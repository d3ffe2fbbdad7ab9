package azguard

import (
	"net"
	"net/http"
	"net/netip"
	"slices"
)

// Parameter names visible to business rules.
const (
	ParamIP                 = "Ip"
	ParamIsLocalIP          = "IsLocalIp"
	ParamIsPrivateIP        = "IsPrivateIp"
	ParamIsSecureConnection = "IsSecureConnection"
)

var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// Params are the contextual parameters of one request. Access checks pass
// them to business rules by name; names are always submitted sorted.
type Params struct {
	IP                 string `json:"ip"`
	IsLocalIP          bool   `json:"is_local_ip"`
	IsPrivateIP        bool   `json:"is_private_ip"`
	IsSecureConnection bool   `json:"is_secure_connection"`
}

// Env returns the parameters keyed by name.
func (p Params) Env() map[string]any {
	return map[string]any{
		ParamIP:                 p.IP,
		ParamIsLocalIP:          p.IsLocalIP,
		ParamIsPrivateIP:        p.IsPrivateIP,
		ParamIsSecureConnection: p.IsSecureConnection,
	}
}

// Names returns the parameter names in lexicographic order.
func (p Params) Names() []string {
	names := []string{ParamIP, ParamIsLocalIP, ParamIsPrivateIP, ParamIsSecureConnection}
	slices.Sort(names)
	return names
}

// Values returns the parameter values aligned with Names.
func (p Params) Values() []any {
	env := p.Env()
	names := p.Names()
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = env[n]
	}
	return values
}

// NewParams classifies a client address reported by a caller, such as a
// service checking on behalf of its own user. Loopback addresses count as
// local.
func NewParams(ip string, secure bool) Params {
	p := Params{
		IP:                 ip,
		IsPrivateIP:        IsPrivateIP(ip),
		IsSecureConnection: secure,
	}
	if addr, err := netip.ParseAddr(ip); err == nil {
		p.IsLocalIP = addr.Unmap().IsLoopback()
	}
	return p
}

// ParamsFromRequest classifies the caller of r. The client address is taken
// from RemoteAddr; forwarding headers are not trusted.
func ParamsFromRequest(r *http.Request) Params {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	p := Params{
		IP:                 host,
		IsPrivateIP:        IsPrivateIP(host),
		IsSecureConnection: r.TLS != nil,
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		p.IsLocalIP = addr.IsLoopback() || isLocalAddr(r, addr)
	}
	return p
}

// isLocalAddr reports whether addr is the address the request arrived on.
func isLocalAddr(r *http.Request, addr netip.Addr) bool {
	local, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr)
	if !ok {
		return false
	}
	ap, err := netip.ParseAddrPort(local.String())
	if err != nil {
		return false
	}
	return ap.Addr().Unmap() == addr
}

// IsPrivateIP reports whether ip is an IPv4 address in 10.0.0.0/8,
// 172.16.0.0/12 or 192.168.0.0/16.
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return false
	}
	for _, p := range privatePrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsOnIntranet reports whether addr is a loopback or private IPv4 address.
// The unspecified address is never on the intranet.
func IsOnIntranet(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.IsUnspecified() {
		return false
	}
	if addr.IsLoopback() {
		return true
	}
	return IsPrivateIP(addr.String())
}
