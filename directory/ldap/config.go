package ldap

import "time"

// Config configures the LDAP directory.
type Config struct {
	// URL of the directory server, e.g. ldaps://dc1.example.com:636.
	URL string `json:"url" yaml:"url" toml:"url"`

	// BindDN and BindPassword authenticate the search connection. An
	// empty BindDN searches anonymously.
	BindDN       string `json:"bind_dn,omitempty" yaml:"bind_dn" toml:"bind_dn"`
	BindPassword string `json:"bind_password,omitempty" yaml:"bind_password" toml:"bind_password"`

	// BaseDN is the subtree searched for users and groups.
	BaseDN string `json:"base_dn" yaml:"base_dn" toml:"base_dn"`

	// UserBaseDN overrides BaseDN for user searches.
	UserBaseDN string `json:"user_base_dn,omitempty" yaml:"user_base_dn" toml:"user_base_dn"`

	UserObjectClass   string `json:"user_object_class,omitempty" yaml:"user_object_class" toml:"user_object_class"`
	UserNameAttribute string `json:"user_name_attribute,omitempty" yaml:"user_name_attribute" toml:"user_name_attribute"`
	SIDAttribute      string `json:"sid_attribute,omitempty" yaml:"sid_attribute" toml:"sid_attribute"`
	MailAttribute     string `json:"mail_attribute,omitempty" yaml:"mail_attribute" toml:"mail_attribute"`

	// GroupSIDAttribute is read from the user entry with a base-object
	// search. Active Directory computes tokenGroups only for such reads.
	GroupSIDAttribute string `json:"group_sid_attribute,omitempty" yaml:"group_sid_attribute" toml:"group_sid_attribute"`

	GroupObjectClass   string `json:"group_object_class,omitempty" yaml:"group_object_class" toml:"group_object_class"`
	GroupNameAttribute string `json:"group_name_attribute,omitempty" yaml:"group_name_attribute" toml:"group_name_attribute"`
	MemberAttribute    string `json:"member_attribute,omitempty" yaml:"member_attribute" toml:"member_attribute"`

	// Timeout bounds dialing the server.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout" toml:"timeout"`
}

// DefaultConfig returns Active Directory attribute defaults.
func DefaultConfig() Config {
	return Config{
		UserObjectClass:    "user",
		UserNameAttribute:  "sAMAccountName",
		SIDAttribute:       "objectSid",
		MailAttribute:      "mail",
		GroupSIDAttribute:  "tokenGroups",
		GroupObjectClass:   "groupOfNames",
		GroupNameAttribute: "cn",
		MemberAttribute:    "member",
		Timeout:            10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserObjectClass == "" {
		c.UserObjectClass = d.UserObjectClass
	}
	if c.UserNameAttribute == "" {
		c.UserNameAttribute = d.UserNameAttribute
	}
	if c.SIDAttribute == "" {
		c.SIDAttribute = d.SIDAttribute
	}
	if c.MailAttribute == "" {
		c.MailAttribute = d.MailAttribute
	}
	if c.GroupObjectClass == "" {
		c.GroupObjectClass = d.GroupObjectClass
	}
	if c.GroupNameAttribute == "" {
		c.GroupNameAttribute = d.GroupNameAttribute
	}
	if c.MemberAttribute == "" {
		c.MemberAttribute = d.MemberAttribute
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.UserBaseDN == "" {
		c.UserBaseDN = c.BaseDN
	}
	return c
}
