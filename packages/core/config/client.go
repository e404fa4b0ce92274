package config

import (
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/xhr"
)

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions() []http.ClientOption {
	opts := []http.ClientOption{
		http.WithTimeout(time.Duration(c.Timeout) * time.Millisecond),
		http.WithAdditionalErrorCodes(c.AdditionalErrorCodes...),
		http.WithErrorsWhitelist(c.ErrorsWhitelist...),
		http.WithDefaultHeaders(c.Headers),
		http.WithTransportOptions(
			xhr.WithValidateSSL(c.GetValidateSSL()),
			xhr.WithHTTP2(c.GetHTTP2()),
		),
	}
	if c.BaseURL != "" {
		opts = append(opts, http.WithBaseURL(c.BaseURL))
	}
	if c.Proxy != "" {
		opts = append(opts, http.WithTransportOptions(xhr.WithProxy(c.Proxy)))
	}
	if c.Locale != "" {
		opts = append(opts, http.WithLocale(c.Locale))
	}
	return opts
}
