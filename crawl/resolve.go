package crawl

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"vecrawl"
)

// SeedSet is the resolved, deduplicated set of URLs a crawl starts from.
type SeedSet struct {
	// StartURL is the normalized start URL when link traversal is
	// enabled, empty otherwise.
	StartURL string

	// StartDomain is the registrable domain of StartURL, used to scope
	// link traversal.
	StartDomain string

	// URLs holds all seeds in source order: start URL, then sitemap
	// entries, then manual URLs. Normalized, no duplicates.
	URLs []string

	// SourceErrs holds non-fatal source failures (e.g. a sitemap that
	// could not be fetched while other sources yielded URLs).
	SourceErrs []error
}

// Resolver merges the enabled URL sources into a single seed set.
type Resolver struct {
	Sitemaps vecrawl.SitemapService
}

// Resolve builds the seed set for cfg. It returns EINVALID if no source is
// enabled and EUNAVAILABLE if the sitemap was the only enabled source and
// it failed. A sitemap failure alongside other productive sources is
// recorded in SeedSet.SourceErrs and does not abort the run.
func (r *Resolver) Resolve(ctx context.Context, cfg *vecrawl.Config) (*SeedSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set := &SeedSet{}
	seen := make(map[string]bool)

	push := func(raw string) {
		normalized, err := NormalizeURL(raw)
		if err != nil {
			set.SourceErrs = append(set.SourceErrs, fmt.Errorf("skipping seed %q: %w", raw, err))
			return
		}
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		set.URLs = append(set.URLs, normalized)
	}

	if cfg.UseStartURL {
		normalized, err := NormalizeURL(cfg.StartURL)
		if err != nil {
			return nil, vecrawl.Errorf(vecrawl.EINVALID, "invalid start URL %q: %v", cfg.StartURL, err)
		}
		set.StartURL = normalized
		set.StartDomain = RegistrableDomain(normalized)
		push(cfg.StartURL)
	}

	var sitemapErr error
	if cfg.UseSitemap {
		urls, err := r.Sitemaps.DiscoverURLs(ctx, cfg.SitemapURL)
		if err != nil {
			sitemapErr = err
		}
		for _, u := range urls {
			push(u)
		}
	}

	if cfg.UseManualURLs {
		for _, u := range cfg.ManualURLs {
			push(u)
		}
	}

	if sitemapErr != nil {
		if len(set.URLs) == 0 {
			return nil, vecrawl.Errorf(vecrawl.EUNAVAILABLE, "sitemap %s unavailable and no other source yielded URLs: %v", cfg.SitemapURL, sitemapErr)
		}
		set.SourceErrs = append(set.SourceErrs, fmt.Errorf("sitemap %s: %w", cfg.SitemapURL, sitemapErr))
	}

	return set, nil
}

// NormalizeURL canonicalizes a URL so that equivalent spellings collapse
// to one entry: scheme and host are lowercased, fragments and default
// ports are stripped, an empty path becomes "/", and non-root trailing
// slashes are removed. Only http and https URLs are accepted.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}

	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !isDefaultPort(u.Scheme, port) {
		host = net.JoinHostPort(host, port)
	}
	u.Host = host

	u.Fragment = ""
	switch u.Path {
	case "":
		u.Path = "/"
	case "/":
	default:
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}

// RegistrableDomain returns the eTLD+1 for a URL's host, used to decide
// whether a discovered link stays on the crawled site. Hosts without a
// public suffix (IPs, localhost) fall back to the bare host.
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
