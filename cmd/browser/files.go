package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	stdnet "github.com/skonuru8/browser/std/net"
)

// localHost is the pseudo host local files are served from.
const localHost = "local.file"

// fileFetcher serves a directory as http://local.file/ so relative
// stylesheets and scripts resolve against the input file.
type fileFetcher struct {
	root string
}

func newFileFetcher(path string) (*fileFetcher, stdnet.URL, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, stdnet.URL{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	f := &fileFetcher{root: filepath.Dir(abs)}
	u, err := stdnet.Parse("http://" + localHost + "/" + filepath.ToSlash(filepath.Base(abs)))
	if err != nil {
		return nil, stdnet.URL{}, err
	}
	return f, u, nil
}

func (f *fileFetcher) Fetch(ctx context.Context, u stdnet.URL, req stdnet.Request) (*stdnet.Response, error) {
	if u.Host != localHost {
		return nil, &stdnet.NetworkError{Op: "dial", Addr: u.HostPort(), Err: fmt.Errorf("offline: only local files are served")}
	}
	rel := filepath.FromSlash(strings.TrimPrefix(u.Path, "/"))
	data, err := os.ReadFile(filepath.Join(f.root, rel))
	if err != nil {
		return nil, &stdnet.NetworkError{Op: "read", Addr: u.HostPort(), Err: err}
	}
	header := map[string][]string{}
	if strings.HasSuffix(rel, ".css") {
		header["content-type"] = []string{"text/css"}
	}
	return &stdnet.Response{StatusCode: 200, Status: "OK", Header: header, Body: data}, nil
}
