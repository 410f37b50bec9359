package customHttpClient

import (
	"net/http"

	"github.com/avanth/docuquery/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// Pooled is shared by REST callers so probe and generate requests reuse
// connections instead of redialing the local inference server.
var Pooled = &http.Client{Transport: customTransport}
