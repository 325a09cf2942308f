// Package httpsms sends SMS through a form-POST HTTP gateway with basic
// auth, the wire shape most hosted SMS providers expose.
package httpsms

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/netvista/ispconsole-backend/internal/transport"
)

const userAgent = "netvista/ispconsole-1.0"

type gateway struct {
	client *retryablehttp.Client

	endpoint string
	from     string

	username string
	password string
}

func NewGateway(endpoint, from, username, password string) transport.SmsTransport {
	client := retryablehttp.NewClient()
	client.Logger = nil

	return &gateway{
		client: client,

		endpoint: endpoint,
		from:     from,
		username: username,
		password: password,
	}
}

func (g *gateway) Send(ctx context.Context, number, message string) error {
	body := url.Values{
		"from":    {g.from},
		"to":      {number},
		"message": {message},
	}.Encode()

	req, err := retryablehttp.NewRequest(http.MethodPost, g.endpoint, bytes.NewReader([]byte(body)))
	if err != nil {
		return err
	}

	req = req.WithContext(ctx)
	req.SetBasicAuth(g.username, g.password)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 || resp.StatusCode <= 199 {
		return errors.Errorf("unexpected response code %d received from sms gateway", resp.StatusCode)
	}

	return nil
}
