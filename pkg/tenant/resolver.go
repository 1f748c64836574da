package tenant

import (
	"net"
	"net/http"
	"slices"
	"strings"
)

// Resolver extracts a tenant identifier from an HTTP request. An empty
// string with a nil error means "this source has no opinion"; chains fall
// through to the next resolver.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// DefaultHeader is the canonical tenant identification header.
const DefaultHeader = "X-Tenant-ID"

// DefaultQueryParam is the canonical tenant identification query parameter.
const DefaultQueryParam = "tenantId"

// HeaderResolver reads the tenant identifier from a request header.
type HeaderResolver struct {
	Name string
}

// NewHeaderResolver creates a header resolver; an empty name selects
// DefaultHeader.
func NewHeaderResolver(name string) *HeaderResolver {
	if name == "" {
		name = DefaultHeader
	}
	return &HeaderResolver{Name: name}
}

func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	return strings.ToLower(strings.TrimSpace(r.Header.Get(h.Name))), nil
}

// QueryResolver reads the tenant identifier from a query parameter.
type QueryResolver struct {
	Param string
}

// NewQueryResolver creates a query resolver; an empty param selects
// DefaultQueryParam.
func NewQueryResolver(param string) *QueryResolver {
	if param == "" {
		param = DefaultQueryParam
	}
	return &QueryResolver{Param: param}
}

func (q *QueryResolver) Resolve(r *http.Request) (string, error) {
	return strings.ToLower(strings.TrimSpace(r.URL.Query().Get(q.Param))), nil
}

// ClaimResolver reads the tenant identifier from the authenticated
// principal's tenant claim, placed in the context by the auth layer.
type ClaimResolver struct{}

// NewClaimResolver creates a claim resolver.
func NewClaimResolver() *ClaimResolver {
	return &ClaimResolver{}
}

func (c *ClaimResolver) Resolve(r *http.Request) (string, error) {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		return p.TenantID, nil
	}
	return "", nil
}

// defaultReservedSubdomains are host labels that never identify a tenant.
var defaultReservedSubdomains = []string{"www", "api", "admin", "localhost"}

// SubdomainResolver derives the tenant identifier from the first label of
// the request host: "acme" from "acme.topsteel.example". Reserved labels,
// bare IP hosts, and hosts without a subdomain yield no tenant.
type SubdomainResolver struct {
	Reserved []string
}

// NewSubdomainResolver creates a subdomain resolver with the default
// reserved label list.
func NewSubdomainResolver() *SubdomainResolver {
	return &SubdomainResolver{Reserved: defaultReservedSubdomains}
}

func (s *SubdomainResolver) Resolve(r *http.Request) (string, error) {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	// IP-addressed requests carry no subdomain information.
	if net.ParseIP(host) != nil {
		return "", nil
	}

	parts := strings.Split(host, ".")
	// A tenant subdomain needs at least label.domain.tld.
	if len(parts) < 3 {
		return "", nil
	}

	label := parts[0]
	if slices.Contains(s.Reserved, label) {
		return "", nil
	}
	return label, nil
}

// ChainResolver applies resolvers in priority order, returning the first
// non-empty identifier. The canonical order is header, query parameter,
// principal claim, then subdomain.
type ChainResolver struct {
	resolvers []Resolver
}

// NewChainResolver composes resolvers in the given priority order.
func NewChainResolver(resolvers ...Resolver) *ChainResolver {
	return &ChainResolver{resolvers: resolvers}
}

// NewDefaultResolver returns the canonical resolution chain.
func NewDefaultResolver() *ChainResolver {
	return NewChainResolver(
		NewHeaderResolver(""),
		NewQueryResolver(""),
		NewClaimResolver(),
		NewSubdomainResolver(),
	)
}

func (c *ChainResolver) Resolve(r *http.Request) (string, error) {
	for _, resolver := range c.resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}
	return "", nil
}
