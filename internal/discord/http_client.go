package discord

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ProxyConfig descreve um proxy de saída opcional para as chamadas REST.
type ProxyConfig struct {
	Protocol string // "http" quando vazio
	Host     string
	Port     int
	Username string
	Password string
}

func (p ProxyConfig) url() *url.URL {
	scheme := p.Protocol
	if scheme == "" {
		scheme = "http"
	}
	u := &url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u
}

// NewHTTPClient cria o client HTTP para a API da plataforma:
// pooling de conexões, keep-alive, timeouts e proxy opcional.
// Não há client global: cada componente recebe o seu na construção.
func NewHTTPClient(proxy *ProxyConfig) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	if proxy != nil && proxy.Host != "" {
		transport.Proxy = http.ProxyURL(proxy.url())
	}

	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// RetryConfig controla o backoff exponencial das chamadas auxiliares
// (webhook e flag lookup). O fetch de profile não usa backoff: rate limit lá
// é retry-in-place com o Retry-After do servidor, decidido pelo scan loop.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         true,
	}
}

// CalculateBackoff calcula a próxima espera para uma tentativa.
// Retry-After do servidor, quando presente, vence (com padding de 500ms).
func CalculateBackoff(cfg RetryConfig, attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter + 500*time.Millisecond
	}

	backoff := cfg.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
			break
		}
	}

	if cfg.Jitter && backoff > 0 {
		jitterRange := int64(backoff) / 4
		if jitterRange > 0 {
			jitter := time.Duration((int64(attempt) * 137) % jitterRange)
			backoff += jitter
		}
	}

	return backoff
}
