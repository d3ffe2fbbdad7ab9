// Package ldap resolves principals and group roles from an LDAP directory
// such as Active Directory.
package ldap

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/xraph/azguard/directory"
)

// Conn is the subset of *goldap.Conn the directory uses.
type Conn interface {
	Bind(username, password string) error
	Search(req *goldap.SearchRequest) (*goldap.SearchResult, error)
	Close() error
}

// Dialer opens a connection to the directory server.
type Dialer func(ctx context.Context, cfg Config) (Conn, error)

// DialURL is the default Dialer.
func DialURL(_ context.Context, cfg Config) (Conn, error) {
	return goldap.DialURL(cfg.URL, goldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}))
}

// Option configures a Directory.
type Option func(*Directory)

// WithDialer replaces the connection dialer.
func WithDialer(d Dialer) Option { return func(x *Directory) { x.dial = d } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(x *Directory) { x.logger = l } }

// Directory implements directory.Finder over LDAP. Every lookup uses its
// own connection.
type Directory struct {
	cfg    Config
	dial   Dialer
	logger *slog.Logger
}

var _ directory.Finder = (*Directory)(nil)

// New creates a Directory. Unset attribute names take DefaultConfig values.
func New(cfg Config, opts ...Option) *Directory {
	d := &Directory{
		cfg:    cfg.withDefaults(),
		dial:   DialURL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the effective configuration.
func (d *Directory) Config() Config { return d.cfg }

// FindPrincipalByIdentity implements directory.Finder.
func (d *Directory) FindPrincipalByIdentity(ctx context.Context, typ directory.IdentityType, value string) (*directory.Entry, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var req *goldap.SearchRequest
	switch typ {
	case directory.IdentityName:
		req = d.userSearch(fmt.Sprintf("(%s=%s)", d.cfg.UserNameAttribute, goldap.EscapeFilter(value)))
	case directory.IdentitySID:
		raw, err := directory.EncodeBinarySID(value)
		if err != nil {
			return nil, err
		}
		req = d.userSearch(fmt.Sprintf("(%s=%s)", d.cfg.SIDAttribute, escapeBytes(raw)))
	case directory.IdentityDistinguishedName:
		req = goldap.NewSearchRequest(value, goldap.ScopeBaseObject, goldap.NeverDerefAliases, 1, 0, false,
			"(objectClass=*)", nil, nil)
	default:
		return nil, fmt.Errorf("ldap: unsupported identity type %s", typ)
	}

	res, err := conn.Search(req)
	if err != nil {
		if goldap.IsErrorWithCode(err, goldap.LDAPResultNoSuchObject) {
			return nil, fmt.Errorf("%s %q: %w", typ, value, directory.ErrNotFound)
		}
		return nil, fmt.Errorf("ldap: search %s %q: %w", typ, value, err)
	}
	switch len(res.Entries) {
	case 0:
		return nil, fmt.Errorf("%s %q: %w", typ, value, directory.ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("ldap: %s %q matches %d entries", typ, value, len(res.Entries))
	}

	entry, err := d.toEntry(res.Entries[0])
	if err != nil {
		return nil, err
	}
	if d.cfg.GroupSIDAttribute != "" {
		groups, err := d.groupSIDs(conn, entry.DistinguishedName)
		if err != nil {
			return nil, err
		}
		entry.GroupSIDs = groups
	}
	return entry, nil
}

func (d *Directory) connect(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := d.dial(ctx, d.cfg)
	if err != nil {
		return nil, fmt.Errorf("ldap: dial %s: %w", d.cfg.URL, err)
	}
	if d.cfg.BindDN != "" {
		if err := conn.Bind(d.cfg.BindDN, d.cfg.BindPassword); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ldap: bind %s: %w", d.cfg.BindDN, err)
		}
	}
	return conn, nil
}

func (d *Directory) userSearch(clause string) *goldap.SearchRequest {
	filter := fmt.Sprintf("(&(objectClass=%s)%s)", d.cfg.UserObjectClass, clause)
	return goldap.NewSearchRequest(d.cfg.UserBaseDN, goldap.ScopeWholeSubtree, goldap.NeverDerefAliases, 2, 0, false,
		filter, nil, nil)
}

func (d *Directory) toEntry(e *goldap.Entry) (*directory.Entry, error) {
	out := &directory.Entry{
		Name:              e.GetEqualFoldAttributeValue(d.cfg.UserNameAttribute),
		DistinguishedName: e.DN,
		Attributes:        make(map[string][]string),
	}
	if raw := e.GetEqualFoldRawAttributeValue(d.cfg.SIDAttribute); len(raw) > 0 {
		sid, err := directory.ParseBinarySID(raw)
		if err != nil {
			return nil, fmt.Errorf("ldap: %s of %s: %w", d.cfg.SIDAttribute, e.DN, err)
		}
		out.SID = sid
	}
	for _, a := range e.Attributes {
		if strings.EqualFold(a.Name, d.cfg.SIDAttribute) || strings.EqualFold(a.Name, d.cfg.GroupSIDAttribute) {
			continue
		}
		out.Attributes[a.Name] = a.Values
	}
	return out, nil
}

// groupSIDs reads the constructed group SID attribute of dn.
func (d *Directory) groupSIDs(conn Conn, dn string) ([]string, error) {
	req := goldap.NewSearchRequest(dn, goldap.ScopeBaseObject, goldap.NeverDerefAliases, 1, 0, false,
		"(objectClass=*)", []string{d.cfg.GroupSIDAttribute}, nil)
	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("ldap: read %s of %s: %w", d.cfg.GroupSIDAttribute, dn, err)
	}
	if len(res.Entries) == 0 {
		return nil, nil
	}
	raws := res.Entries[0].GetEqualFoldRawAttributeValues(d.cfg.GroupSIDAttribute)
	sids := make([]string, 0, len(raws))
	for _, raw := range raws {
		sid, err := directory.ParseBinarySID(raw)
		if err != nil {
			d.logger.Warn("ldap: skipping malformed group SID",
				slog.String("dn", dn),
				slog.String("error", err.Error()),
			)
			continue
		}
		sids = append(sids, sid)
	}
	return sids, nil
}

// escapeBytes renders raw as an LDAP filter value of \xx escapes.
func escapeBytes(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw) * 3)
	for _, c := range raw {
		fmt.Fprintf(&b, `\%02x`, c)
	}
	return b.String()
}
