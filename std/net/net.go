package net

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultUserAgent = "browser/1.0 (compatible; Go)"

// Request carries the optional parts of a fetch. A non-nil Payload turns
// the request into a form-encoded POST.
type Request struct {
	Referrer string
	Origin   string
	Payload  *string
}

// Method returns GET or POST depending on the payload.
func (r Request) Method() string {
	if r.Payload != nil {
		return "POST"
	}
	return "GET"
}

// Response is a fully read HTTP/1.0 response. Header names are lower-cased;
// repeated headers keep every value in arrival order.
type Response struct {
	StatusCode int
	Status     string
	Header     map[string][]string
	Body       []byte
}

// Get returns the first value of header name, or "".
func (r *Response) Get(name string) string {
	if v := r.Header[strings.ToLower(name)]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Client performs synchronous HTTP/1.0 exchanges over raw TCP or TLS
// connections and keeps the jar current. The zero value is usable but has
// no jar; share one jar across every client of an engine.
type Client struct {
	Jar       *CookieJar
	Dialer    *net.Dialer
	TLSConfig *tls.Config
	UserAgent string
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewClient returns a client bound to jar.
func NewClient(jar *CookieJar, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{Jar: jar, Logger: logger.Named("fetch")}
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Fetch retrieves u. It blocks until the connection is closed by the peer.
// Cancelling ctx closes the connection, which surfaces as a NetworkError.
func (c *Client) Fetch(ctx context.Context, u URL, req Request) (*Response, error) {
	log := c.logger().With(zap.String("url", u.String()), zap.String("method", req.Method()))
	start := c.now()

	conn, err := c.dial(ctx, u)
	if err != nil {
		log.Warn("dial failed", zap.Error(err))
		return nil, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	raw := c.buildRequest(u, req)
	if _, err := io.WriteString(conn, raw); err != nil {
		return nil, &NetworkError{Op: "write", Addr: u.HostPort(), Err: err}
	}

	resp, err := readResponse(bufio.NewReader(conn))
	if err != nil {
		var ne *NetworkError
		if errors.As(err, &ne) {
			ne.Addr = u.HostPort()
		}
		log.Warn("read failed", zap.Error(err))
		return nil, err
	}

	if c.Jar != nil {
		now := c.now()
		for _, sc := range resp.Header["set-cookie"] {
			if err := c.Jar.SetCookieHeader(u.Origin(), sc, now); err != nil {
				log.Debug("ignoring cookie", zap.Error(err))
			}
		}
	}

	log.Debug("fetched",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("elapsed", c.now().Sub(start)))
	return resp, nil
}

func (c *Client) dial(ctx context.Context, u URL) (net.Conn, error) {
	d := c.Dialer
	if d == nil {
		d = &net.Dialer{}
	}
	addr := u.HostPort()
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &NetworkError{Op: "dial", Addr: addr, Err: err}
	}
	if u.Scheme != SchemeHTTPS {
		return conn, nil
	}

	cfg := &tls.Config{}
	if c.TLSConfig != nil {
		cfg = c.TLSConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = strings.Trim(u.Host, "[]")
	}
	tconn := tls.Client(conn, cfg)
	if err := tconn.HandshakeContext(ctx); err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, &NetworkError{Op: "handshake", Addr: addr, Err: err}
		}
		return nil, &TLSError{Host: u.Host, Err: err}
	}
	return tconn, nil
}

func (c *Client) buildRequest(u URL, req Request) string {
	var b strings.Builder
	method := req.Method()
	fmt.Fprintf(&b, "%s %s HTTP/1.0\r\n", method, u.Path)
	fmt.Fprintf(&b, "Host: %s\r\n", u.Host)
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	fmt.Fprintf(&b, "User-Agent: %s\r\n", ua)
	if req.Referrer != "" {
		fmt.Fprintf(&b, "Referer: %s\r\n", req.Referrer)
	}
	if req.Origin != "" {
		fmt.Fprintf(&b, "Origin: %s\r\n", req.Origin)
	}
	if c.Jar != nil {
		if cookie := c.Jar.CookieHeader(u.Origin(), method, crossSite(u, req.Referrer), c.now()); cookie != "" {
			fmt.Fprintf(&b, "Cookie: %s\r\n", cookie)
		}
	}
	if req.Payload != nil {
		b.WriteString("Content-Type: application/x-www-form-urlencoded\r\n")
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(*req.Payload))
	}
	b.WriteString("\r\n")
	if req.Payload != nil {
		b.WriteString(*req.Payload)
	}
	return b.String()
}

// crossSite reports whether a request to u made from referrer crosses
// origins. An absent or unparsable referrer is same-site.
func crossSite(u URL, referrer string) bool {
	if referrer == "" {
		return false
	}
	ref, err := Parse(referrer)
	if err != nil {
		return false
	}
	return ref.Origin() != u.Origin()
}

func readResponse(br *bufio.Reader) (*Response, error) {
	tp := textproto.NewReader(br)
	status, err := tp.ReadLine()
	if err != nil {
		return nil, &NetworkError{Op: "read", Err: err}
	}
	resp := &Response{Status: status, Header: make(map[string][]string)}
	if _, rest, ok := strings.Cut(status, " "); ok {
		code, _, _ := strings.Cut(rest, " ")
		resp.StatusCode, _ = strconv.Atoi(code)
	}

	for {
		line, err := tp.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &NetworkError{Op: "read", Err: err}
		}
		if line == "" {
			break
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		resp.Header[k] = append(resp.Header[k], strings.TrimSpace(v))
	}

	for _, h := range []string{"transfer-encoding", "content-encoding"} {
		if v, ok := resp.Header[h]; ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrUnsupportedEncoding, h, strings.Join(v, ", "))
		}
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, &NetworkError{Op: "read", Err: err}
	}
	resp.Body = body
	return resp, nil
}
