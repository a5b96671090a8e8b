package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"bizbuysell-scraper/logger"
)

// Info holds a single proxy endpoint with optional credentials.
type Info struct {
	Host     string
	Port     int
	Username string
	Password string
}

// URL returns the proxy as an http URL with embedded credentials.
func (p Info) URL() *url.URL {
	u := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u
}

// listResponse mirrors the proxy list API payload.
type listResponse struct {
	Results []struct {
		ProxyAddress string `json:"proxy_address"`
		Port         int    `json:"port"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		Valid        bool   `json:"valid"`
	} `json:"results"`
}

// Pool manages rotating proxies fetched from a list API. A zero-configured
// pool is disabled and hands out direct-connection clients.
type Pool struct {
	listURL  string
	apiToken string

	mutex   sync.RWMutex
	proxies []Info
}

// NewPool creates a proxy pool. listURL may be empty, in which case the pool
// stays empty and Client falls back to direct connections.
func NewPool(listURL, apiToken string) *Pool {
	return &Pool{
		listURL:  listURL,
		apiToken: apiToken,
	}
}

// Enabled reports whether a list URL was configured.
func (p *Pool) Enabled() bool {
	return p.listURL != ""
}

// Refresh fetches the proxy list from the API and replaces the pool contents.
func (p *Pool) Refresh() error {
	if !p.Enabled() {
		return nil
	}

	req, err := http.NewRequest("GET", p.listURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create proxy list request: %w", err)
	}
	if p.apiToken != "" {
		req.Header.Set("Authorization", "Token "+p.apiToken)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch proxy list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proxy list API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read proxy list response: %w", err)
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("failed to parse proxy list response: %w", err)
	}

	var proxies []Info
	for _, r := range list.Results {
		if r.ProxyAddress == "" || r.Port == 0 {
			continue
		}
		proxies = append(proxies, Info{
			Host:     r.ProxyAddress,
			Port:     r.Port,
			Username: r.Username,
			Password: r.Password,
		})
	}

	p.mutex.Lock()
	p.proxies = proxies
	p.mutex.Unlock()

	logger.ForComponent("proxy").Info().
		Int("count", len(proxies)).
		Msg("Refreshed proxy pool")

	return nil
}

// Random returns a random proxy from the pool, or false when none are loaded.
func (p *Pool) Random() (Info, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if len(p.proxies) == 0 {
		return Info{}, false
	}
	return p.proxies[rand.Intn(len(p.proxies))], true
}

// Len returns the number of loaded proxies.
func (p *Pool) Len() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.proxies)
}

// Client returns an http client that routes each request through a randomly
// chosen proxy. With an empty pool the client connects directly.
func (p *Pool) Client(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			proxy, ok := p.Random()
			if !ok {
				return nil, nil
			}
			return proxy.URL(), nil
		},
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
