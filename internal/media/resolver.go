package media

import "strings"

// Resolver turns stored (key, legacy URL) pairs back into delivery
// URLs. Rows written before keys were recorded only carry the URL.
type Resolver struct {
	baseURL string
}

// NewResolver builds a resolver rooted at the delivery base URL, e.g.
// "https://res.cloudinary.com/<cloud>/image/upload".
func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// ResolveURL prefers the key-derived URL and falls back to the legacy
// URL when no key was recorded. Returns "" when neither is present.
func (r *Resolver) ResolveURL(key, legacyURL *string) string {
	if r != nil && r.baseURL != "" && key != nil {
		if k := strings.TrimSpace(*key); k != "" {
			return r.baseURL + "/" + strings.TrimLeft(k, "/")
		}
	}
	if legacyURL != nil {
		return strings.TrimSpace(*legacyURL)
	}
	return ""
}
