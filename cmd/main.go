package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	goapicache "github.com/dgduncan/go-api-cache"
)

func main() {
	// stand-in storefront API that counts how often it is actually hit
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			hits++
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"id":7,"name":"ring"}]`)
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cache := goapicache.NewCache(nil)
	client := &http.Client{
		Transport: goapicache.New(cache, logger)(http.DefaultTransport),
	}

	get := func(url string) {
		resp, err := client.Get(url)
		if err != nil {
			panic(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("GET %s -> %s (upstream hits: %d)\n", url, body, hits)
	}

	get(server.URL + "/products")
	get(server.URL + "/products") // served from cache
	get(server.URL + "/products?category=rings")

	stats := cache.Stats()
	fmt.Printf("cached keys (%d): %v\n", stats.Count, stats.Keys)

	// a successful mutation drops the whole products group
	resp, err := client.Post(server.URL+"/products", "application/json", nil)
	if err != nil {
		panic(err)
	}
	resp.Body.Close()

	stats = cache.Stats()
	fmt.Printf("cached keys after create (%d): %v\n", stats.Count, stats.Keys)

	get(server.URL + "/products") // back to the network
}
