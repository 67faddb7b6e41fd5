// Package resolve turns queue items into URLs a backend can open.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dashreel/dashreel/auth"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/network"
	"github.com/spf13/viper"
)

var ErrUnreachable = errors.New("media link unreachable")

// Resolver signs remote links with the access token and optionally follows their redirects.
type Resolver struct {
	Token     func() (string, error)
	Param     string
	UserAgent string
	Probe     bool
}

// New returns a resolver configured from the settings and the keyring.
func New() *Resolver {
	return &Resolver{
		Token:     auth.Token,
		Param:     viper.GetString(key.ResolveTokenKey),
		UserAgent: viper.GetString(key.ResolveUserAgent),
		Probe:     viper.GetBool(key.ResolveProbe),
	}
}

// Resolve returns the playable URL of item. Local paths are returned as they are.
func (r *Resolver) Resolve(ctx context.Context, item *media.Item) (string, error) {
	if !item.IsRemote() {
		return item.Path, nil
	}

	link := item.Path
	if r.Token != nil {
		token, err := r.Token()
		if err != nil {
			return "", fmt.Errorf("access token: %w", err)
		}
		if token != "" {
			if link, err = WithToken(link, r.Param, token); err != nil {
				return "", err
			}
		}
	}

	if !r.Probe {
		return link, nil
	}
	return r.probe(ctx, link)
}

// probe follows redirects and returns the final location.
func (r *Resolver) probe(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return "", err
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	resp, err := network.Do(req, false)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: %s", ErrUnreachable, resp.Status)
	}

	final := resp.Request.URL.String()
	if final != link {
		log.Debugf("resolve: %s redirected to %s", link, final)
	}
	return final, nil
}

// WithToken sets param=token on link, replacing an existing value in place.
func WithToken(link, param, token string) (string, error) {
	if param == "" {
		param = "access_token"
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid link: %w", err)
	}

	pair := param + "=" + url.QueryEscape(token)
	parts := strings.Split(u.RawQuery, "&")
	replaced := false
	for i, p := range parts {
		if p == param || strings.HasPrefix(p, param+"=") {
			parts[i] = pair
			replaced = true
		}
	}

	switch {
	case replaced:
		u.RawQuery = strings.Join(parts, "&")
	case u.RawQuery == "":
		u.RawQuery = pair
	default:
		u.RawQuery += "&" + pair
	}
	return u.String(), nil
}
