package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talonops/talon/internal/errors"
)

// FilterAttribute documents one host filter key accepted on the command line.
type FilterAttribute struct {
	Name        string
	Description string
	Example     string
}

// HostFilterAttributes enumerates the filter keys understood by the device
// directory, keyed by the aliases users type at the CLI.
var HostFilterAttributes = []FilterAttribute{
	{"Hostname", "Match devices by hostname (exact or prefix with a trailing *)", "-f Hostname=WEB-SRV-01"},
	{"OS", "Match devices by platform family", "-f OS=Windows"},
	{"OSVersion", "Match devices by operating system version string", "-f OSVersion='Windows Server 2022'"},
	{"Role", "Match devices by product type / role", "-f Role=Server,DC"},
	{"Domain", "Match devices by machine domain", "-f Domain=CORP.EXAMPLE.COM"},
	{"LocalIP", "Match devices by last known local IP address", "-f LocalIP=10.1.2.3"},
	{"Site", "Match devices by site name", "-f Site=London"},
	{"Tag", "Match devices carrying a grouping tag", "-f Tag=critical-assets"},
	{"LastSeen", "Match devices by last-seen timestamp (RFC3339, >= / <= prefixes)", "-f LastSeen=>=2026-01-01T00:00:00Z"},
	{"Contained", "Match devices by containment status", "-f Contained=normal"},
	{"OnlineState", "Match devices by current online state (online, offline, unknown)", "-f OnlineState=online"},
}

// canonical filter field names on the wire, keyed by lowercased alias.
var filterFields = map[string]string{
	"hostname":    "hostname",
	"os":          "platform_name",
	"osversion":   "os_version",
	"role":        "product_type_desc",
	"domain":      "machine_domain",
	"localip":     "local_ip",
	"site":        "site_name",
	"tag":         "tags",
	"lastseen":    "last_seen",
	"contained":   "status",
	"onlinestate": "online_status",
}

// Filter is an ordered conjunction of host filter conditions.
type Filter struct {
	conditions []string
}

// ParseFilters converts -f key=value strings into a Filter. Each value may
// be a comma-delimited list, which matches any of the listed values.
func ParseFilters(kvStrings []string) (*Filter, error) {
	f := &Filter{}
	for _, kv := range kvStrings {
		eq := strings.Index(kv, "=")
		if eq < 1 {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Filter %q is not in key=value format", kv),
				"Run 'talon filters' to list available filter keys")
		}
		key := strings.TrimSpace(kv[:eq])
		value := strings.TrimSpace(kv[eq+1:])

		field, ok := filterFields[strings.ToLower(key)]
		if !ok {
			known := make([]string, 0, len(filterFields))
			for alias := range filterFields {
				known = append(known, alias)
			}
			sort.Strings(known)
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown filter key %q", key),
				"Known keys: "+strings.Join(known, ", "))
		}
		if value == "" {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Filter %q has an empty value", kv), "")
		}

		parts := strings.Split(value, ",")
		quoted := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				quoted = append(quoted, fmt.Sprintf("'%s'", p))
			}
		}
		if len(quoted) == 1 {
			f.conditions = append(f.conditions, fmt.Sprintf("%s:%s", field, quoted[0]))
		} else {
			f.conditions = append(f.conditions,
				fmt.Sprintf("%s:[%s]", field, strings.Join(quoted, ",")))
		}
	}
	return f, nil
}

// Query renders the filter in the platform's query syntax. An empty filter
// renders as an empty string, which the directory treats as match-all.
func (f *Filter) Query() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.conditions, "+")
}

// Empty reports whether no conditions were supplied.
func (f *Filter) Empty() bool {
	return f == nil || len(f.conditions) == 0
}
