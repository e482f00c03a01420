package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	stdnet "github.com/skonuru8/browser/std/net"
)

// ErrBlocked is returned when the page's Content-Security-Policy forbids a
// subresource request.
var ErrBlocked = errors.New("blocked by content security policy")

// Fetcher retrieves resources. *stdnet.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, u stdnet.URL, req stdnet.Request) (*stdnet.Response, error)
}

// Policy is the default-src origin allow-list of a Content-Security-Policy
// header. A nil Policy allows every request.
type Policy struct {
	origins map[string]bool
}

// ParsePolicy reads the default-src directive of header. It returns nil
// when the header has no default-src or the directive lists no sources.
func ParsePolicy(header string) *Policy {
	for _, directive := range strings.Split(header, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 || !strings.EqualFold(fields[0], "default-src") {
			continue
		}
		p := &Policy{origins: make(map[string]bool)}
		for _, src := range fields[1:] {
			p.origins[src] = true
		}
		if len(p.origins) == 0 {
			return nil
		}
		return p
	}
	return nil
}

// Allows reports whether u's origin is on the allow-list.
func (p *Policy) Allows(u stdnet.URL) bool {
	if p == nil {
		return true
	}
	return p.origins[u.Origin()]
}

// Origins lists the allowed origins.
func (p *Policy) Origins() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.origins))
	for o := range p.origins {
		out = append(out, o)
	}
	return out
}

// Loader fetches the subresources of one page. Relative references are
// resolved against the page URL and every request carries the page as
// Referer and its origin as Origin.
type Loader struct {
	fetcher Fetcher
	page    stdnet.URL
	policy  *Policy
	logger  *zap.Logger
}

// NewLoader creates a loader for the page at base.
func NewLoader(fetcher Fetcher, base stdnet.URL, policy *Policy, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, page: base, policy: policy, logger: logger}
}

// Resolve resolves ref against the page URL and checks it against the
// policy.
func (l *Loader) Resolve(ref string) (stdnet.URL, error) {
	u, err := l.page.Resolve(ref)
	if err != nil {
		return stdnet.URL{}, fmt.Errorf("resolving %q: %w", ref, err)
	}
	if !l.policy.Allows(u) {
		return u, fmt.Errorf("%s: %w", u, ErrBlocked)
	}
	return u, nil
}

// Fetch requests ref on behalf of the page. A non-nil payload sends a POST.
func (l *Loader) Fetch(ctx context.Context, ref string, payload *string) (stdnet.URL, *stdnet.Response, error) {
	u, err := l.Resolve(ref)
	if err != nil {
		return u, nil, err
	}
	resp, err := l.fetcher.Fetch(ctx, u, stdnet.Request{
		Referrer: l.page.String(),
		Origin:   l.page.Origin(),
		Payload:  payload,
	})
	if err != nil {
		return u, nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	return u, resp, nil
}

// FetchCSS fetches a stylesheet and returns its text.
func (l *Loader) FetchCSS(ctx context.Context, href string) (string, error) {
	u, resp, err := l.Fetch(ctx, href, nil)
	if err != nil {
		return "", err
	}
	// Accept text/css, text/plain, or any text/* content type
	ct := strings.ToLower(resp.Get("content-type"))
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS at %s: %s", u, ct)
	}
	l.logger.Debug("stylesheet loaded", zap.String("url", u.String()), zap.Int("bytes", len(resp.Body)))
	return string(resp.Body), nil
}

// FetchScript fetches an external script and returns its source.
func (l *Loader) FetchScript(ctx context.Context, src string) (string, error) {
	u, resp, err := l.Fetch(ctx, src, nil)
	if err != nil {
		return "", err
	}
	l.logger.Debug("script loaded", zap.String("url", u.String()), zap.Int("bytes", len(resp.Body)))
	return string(resp.Body), nil
}

// ErrCrossOrigin is returned for a cross-origin XMLHttpRequest whose
// response does not allow the page origin.
var ErrCrossOrigin = errors.New("cross-origin XHR request not allowed")

// XHR performs a script request. Cross-origin responses must carry an
// Access-Control-Allow-Origin of "*" or the page origin.
func (l *Loader) XHR(ctx context.Context, method, ref string, body *string) (string, error) {
	if !strings.EqualFold(method, "POST") {
		body = nil
	}
	u, resp, err := l.Fetch(ctx, ref, body)
	if err != nil {
		return "", err
	}
	if u.SameOrigin(l.page) {
		return string(resp.Body), nil
	}
	allow := strings.TrimSpace(resp.Get("access-control-allow-origin"))
	if allow != "*" && allow != l.page.Origin() {
		return "", ErrCrossOrigin
	}
	return string(resp.Body), nil
}
