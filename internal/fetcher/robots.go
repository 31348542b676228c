package fetcher

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RobotsChecker decides whether URLs may be crawled according to robots.txt.
// Rules are fetched once per site and cached. Safe for concurrent use.
type RobotsChecker struct {
	mu        sync.RWMutex
	cache     map[string]*robotsRules
	userAgent string
	client    *http.Client
	logger    *zap.Logger
	// basePath is tried as a second robots.txt location for sites served
	// from a subdirectory, e.g. "/nyte" for https://host/nyte/robots.txt.
	basePath string
}

type robotsRules struct {
	disallowRules []string
	allowRules    []string
	crawlDelay    time.Duration
}

// NewRobotsChecker creates a RobotsChecker matching userAgent against
// User-agent groups.
func NewRobotsChecker(userAgent string, client *http.Client, logger *zap.Logger) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotsChecker{
		cache:     make(map[string]*robotsRules),
		userAgent: userAgent,
		client:    client,
		logger:    logger,
	}
}

// SetBasePath sets the subdirectory fallback location. It is normalized to
// a leading slash and no trailing slash; "" or "/" disables it.
func (r *RobotsChecker) SetBasePath(basePath string) {
	basePath = strings.Trim(basePath, "/")
	if basePath != "" {
		basePath = "/" + basePath
	}
	r.basePath = basePath
}

// IsAllowed reports whether targetURL may be fetched. The longest matching
// rule wins; unreachable or missing robots.txt allows everything.
func (r *RobotsChecker) IsAllowed(ctx context.Context, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return true
	}
	rules := r.rules(ctx, u.Scheme, u.Host)
	if rules == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return rules.allows(path)
}

// CrawlDelay returns the Crawl-delay declared for the site of targetURL, or 0.
func (r *RobotsChecker) CrawlDelay(ctx context.Context, targetURL string) time.Duration {
	u, err := url.Parse(targetURL)
	if err != nil {
		return 0
	}
	if rules := r.rules(ctx, u.Scheme, u.Host); rules != nil {
		return rules.crawlDelay
	}
	return 0
}

func (rr *robotsRules) allows(path string) bool {
	allowed := true
	matched := 0
	for _, rule := range rr.allowRules {
		if pathMatches(path, rule) && len(rule) > matched {
			allowed, matched = true, len(rule)
		}
	}
	for _, rule := range rr.disallowRules {
		if pathMatches(path, rule) && len(rule) > matched {
			allowed, matched = false, len(rule)
		}
	}
	return allowed
}

func (r *RobotsChecker) rules(ctx context.Context, scheme, host string) *robotsRules {
	key := scheme + "://" + host + r.basePath

	r.mu.RLock()
	rules, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return rules
	}

	rules = r.fetch(ctx, scheme+"://"+host+"/robots.txt")
	if rules == nil && r.basePath != "" {
		rules = r.fetch(ctx, scheme+"://"+host+r.basePath+"/robots.txt")
	}

	// nil is cached too so a missing file is only requested once.
	r.mu.Lock()
	r.cache[key] = rules
	r.mu.Unlock()
	return rules
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) *robotsRules {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("robots.txt unavailable", zap.String("url", robotsURL), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	r.logger.Debug("fetched robots.txt", zap.String("url", robotsURL))
	return r.parse(resp.Body)
}

// parse extracts the group for our user agent, falling back to the "*"
// group when no specific group exists.
func (r *RobotsChecker) parse(reader io.Reader) *robotsRules {
	ours := &robotsRules{}
	wildcard := &robotsRules{}
	agent := strings.ToLower(r.userAgent)

	var current *robotsRules
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			ua := strings.ToLower(value)
			switch {
			case ua == "*":
				current = wildcard
			case ua != "" && strings.Contains(agent, ua):
				current = ours
			default:
				current = nil
			}
		case "disallow":
			if current != nil && value != "" {
				current.disallowRules = append(current.disallowRules, value)
			}
		case "allow":
			if current != nil && value != "" {
				current.allowRules = append(current.allowRules, value)
			}
		case "crawl-delay":
			if current == nil {
				continue
			}
			if secs, err := strconv.ParseFloat(value, 64); err == nil && secs > 0 {
				current.crawlDelay = time.Duration(secs * float64(time.Second))
			}
		}
	}

	if len(ours.disallowRules) == 0 && len(ours.allowRules) == 0 && ours.crawlDelay == 0 {
		return wildcard
	}
	return ours
}

// pathMatches matches path against a robots.txt pattern supporting "*"
// wildcards and a trailing "$" anchor; plain patterns match as prefixes.
func pathMatches(path, pattern string) bool {
	if pattern == "" {
		return false
	}

	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")

	if !strings.Contains(pattern, "*") {
		if anchored {
			return path == pattern
		}
		return strings.HasPrefix(path, pattern)
	}

	parts := strings.Split(pattern, "*")
	last := len(parts) - 1
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == last && anchored {
			return len(path)-pos >= len(part) && strings.HasSuffix(path, part)
		}
		idx := strings.Index(path[pos:], part)
		if idx == -1 || (i == 0 && idx != 0) {
			return false
		}
		pos += idx + len(part)
	}
	return true
}
