package azguard

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"slices"
	"testing"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"192.168.1.1", true},
		{"192.169.1.1", false},
		{"8.8.8.8", false},
		{"127.0.0.1", false},
		{"::ffff:10.0.0.1", true},
		{"fd00::1", false},
		{"not-an-ip", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPrivateIP(tt.ip); got != tt.want {
			t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestIsOnIntranet(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"0.0.0.0", false},
		{"127.0.0.1", true},
		{"::1", true},
		{"192.168.10.4", true},
		{"203.0.113.7", false},
	}
	for _, tt := range tests {
		if got := IsOnIntranet(netip.MustParseAddr(tt.ip)); got != tt.want {
			t.Errorf("IsOnIntranet(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
	if IsOnIntranet(netip.Addr{}) {
		t.Error("zero address must not be on the intranet")
	}
}

func TestParamsNamesSorted(t *testing.T) {
	p := Params{IP: "10.0.0.1", IsPrivateIP: true}
	names := p.Names()
	if !slices.IsSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
	values := p.Values()
	env := p.Env()
	for i, n := range names {
		if env[n] != values[i] {
			t.Fatalf("value for %s misaligned", n)
		}
	}
	if err := checkParamVectors(names, values); err != nil {
		t.Fatal(err)
	}
}

func TestParamsFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.168.1.20:51234"
	p := ParamsFromRequest(r)
	if p.IP != "192.168.1.20" || !p.IsPrivateIP || p.IsLocalIP || p.IsSecureConnection {
		t.Fatalf("unexpected params %+v", p)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "127.0.0.1:40000"
	r.TLS = &tls.ConnectionState{}
	p = ParamsFromRequest(r)
	if !p.IsLocalIP || !p.IsSecureConnection || p.IsPrivateIP {
		t.Fatalf("unexpected params %+v", p)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:443"
	local := &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 8080}
	r = r.WithContext(context.WithValue(r.Context(), http.LocalAddrContextKey, local))
	p = ParamsFromRequest(r)
	if !p.IsLocalIP {
		t.Fatal("request from the server's own address should be local")
	}
}

func TestNewParams(t *testing.T) {
	p := NewParams("192.168.1.4", true)
	if !p.IsPrivateIP || p.IsLocalIP || !p.IsSecureConnection {
		t.Fatalf("unexpected params %+v", p)
	}
	p = NewParams("::1", false)
	if !p.IsLocalIP || p.IsPrivateIP {
		t.Fatalf("unexpected params %+v", p)
	}
	p = NewParams("not-an-ip", false)
	if p.IsLocalIP || p.IsPrivateIP || p.IP != "not-an-ip" {
		t.Fatalf("unexpected params %+v", p)
	}
}
