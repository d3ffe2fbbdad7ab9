package ldap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goldap "github.com/go-ldap/ldap/v3"

	"github.com/xraph/azguard/directory"
)

// User is a directory account as seen by membership lookups.
type User struct {
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	DistinguishedName string `json:"distinguished_name"`
}

// ValidateUser checks a user's password by binding as the user's DN on a
// connection of its own. Unknown users, empty passwords and rejected
// credentials report false without an error.
func (d *Directory) ValidateUser(ctx context.Context, userName, password string) (bool, error) {
	// An empty password makes a simple bind unauthenticated, which most
	// servers accept.
	if userName == "" || password == "" {
		return false, nil
	}
	u, err := d.GetUser(ctx, userName)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	conn, err := d.dial(ctx, d.cfg)
	if err != nil {
		return false, fmt.Errorf("ldap: dial %s: %w", d.cfg.URL, err)
	}
	defer conn.Close()
	if err := conn.Bind(u.DistinguishedName, password); err != nil {
		if goldap.IsErrorWithCode(err, goldap.LDAPResultInvalidCredentials) {
			return false, nil
		}
		return false, fmt.Errorf("ldap: bind %s: %w", u.DistinguishedName, err)
	}
	return true, nil
}

// GetUser looks a user up by account name. It fails with an error
// wrapping directory.ErrNotFound when no account matches.
func (d *Directory) GetUser(ctx context.Context, userName string) (*User, error) {
	clause := fmt.Sprintf("(%s=%s)", d.cfg.UserNameAttribute, goldap.EscapeFilter(userName))
	return d.findUser(ctx, "name", userName, clause)
}

// UserNameByEmail returns the account name of the user with the given
// mail address.
func (d *Directory) UserNameByEmail(ctx context.Context, email string) (string, error) {
	clause := fmt.Sprintf("(%s=%s)", d.cfg.MailAttribute, goldap.EscapeFilter(email))
	u, err := d.findUser(ctx, "email", email, clause)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

// AllUsers returns every user account under the user base DN. Entries
// without an account name are skipped.
func (d *Directory) AllUsers(ctx context.Context) ([]*User, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	filter := fmt.Sprintf("(objectClass=%s)", d.cfg.UserObjectClass)
	req := goldap.NewSearchRequest(d.cfg.UserBaseDN, goldap.ScopeWholeSubtree, goldap.NeverDerefAliases, 0, 0, false,
		filter, d.userAttributes(), nil)
	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("ldap: list users: %w", err)
	}
	users := make([]*User, 0, len(res.Entries))
	for _, e := range res.Entries {
		u := d.toUser(e)
		if u.Name == "" {
			d.logger.Debug("ldap: skipping user entry without account name", slog.String("dn", e.DN))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (d *Directory) findUser(ctx context.Context, what, value, clause string) (*User, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	req := d.userSearch(clause)
	req.Attributes = d.userAttributes()
	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("ldap: search user %s %q: %w", what, value, err)
	}
	switch len(res.Entries) {
	case 0:
		return nil, fmt.Errorf("user %s %q: %w", what, value, directory.ErrNotFound)
	case 1:
		return d.toUser(res.Entries[0]), nil
	default:
		return nil, fmt.Errorf("ldap: user %s %q matches %d entries", what, value, len(res.Entries))
	}
}

func (d *Directory) userAttributes() []string {
	return []string{d.cfg.UserNameAttribute, d.cfg.MailAttribute}
}

func (d *Directory) toUser(e *goldap.Entry) *User {
	return &User{
		Name:              e.GetEqualFoldAttributeValue(d.cfg.UserNameAttribute),
		Email:             e.GetEqualFoldAttributeValue(d.cfg.MailAttribute),
		DistinguishedName: e.DN,
	}
}
