// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mistral

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type Option func(*Client)

func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithExpiry sets the signed URL lifetime in hours.
func WithExpiry(hours int) Option {
	return func(c *Client) {
		c.expiry = hours
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}
