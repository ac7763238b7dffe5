package utils

import (
	"crypto/tls"
	"net/http"
	"time"
)

// NewHTTPClient 模型端点共用的 HTTP 客户端。debug 为真时记录请求详情
func NewHTTPClient(timeout time.Duration, debug bool) *http.Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if debug {
		transport = NewDebugTransport(transport, "model")
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
