// Package imageprobe checks whether a URL serves an image without
// downloading it.
package imageprobe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"resty.dev/v3"
)

var (
	ErrNotImage       = errors.New("url does not serve an image")
	ErrBlockedAddress = errors.New("address is not publicly routable")
)

type Prober struct {
	client  *resty.Client
	timeout time.Duration
}

// New builds a prober that only connects to public addresses. The check runs
// on the resolved IP of every dial, redirects included.
func New(timeout time.Duration) *Prober {
	return newProber(timeout, func(ip net.IP, _ string) bool { return publicAddress(ip) })
}

// newProber dials only addresses allow accepts.
func newProber(timeout time.Duration, allow func(ip net.IP, port string) bool) *Prober {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(_, address string, _ syscall.RawConn) error {
			host, port, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !allow(ip, port) {
				return fmt.Errorf("dial %s: %w", address, ErrBlockedAddress)
			}
			return nil
		},
	}
	// No proxy: the dial guard must see the image host itself.
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	client := resty.NewWithClient(&http.Client{Transport: transport}).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", "snippets-imageprobe/1.0")
	return &Prober{client: client, timeout: timeout}
}

// carrierNAT is the shared address space of RFC 6598.
var carrierNAT = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// publicAddress rejects loopback, private, link-local, multicast and
// unspecified addresses.
func publicAddress(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast(),
		carrierNAT.Contains(ip):
		return false
	}
	return true
}

func (p *Prober) Close() error {
	return p.client.Close()
}

// Probe sends a HEAD request and accepts any 2xx answer with an image/*
// content type. Servers that reject HEAD are retried once with a one-byte GET.
func (p *Prober) Probe(ctx context.Context, url string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res, err := p.client.R().WithContext(ctx).Head(url)
	if err != nil {
		return fmt.Errorf("probe %s: %w", url, err)
	}
	if res.StatusCode() == http.StatusMethodNotAllowed {
		res, err = p.client.R().WithContext(ctx).
			SetHeader("Range", "bytes=0-0").
			SetDoNotParseResponse(true).
			Get(url)
		if err != nil {
			return fmt.Errorf("probe %s: %w", url, err)
		}
		defer res.Body.Close()
	}

	if !res.IsSuccess() {
		return fmt.Errorf("probe %s: status %d: %w", url, res.StatusCode(), ErrNotImage)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(strings.ToLower(ct), "image/") {
		return fmt.Errorf("probe %s: content type %q: %w", url, ct, ErrNotImage)
	}
	return nil
}
