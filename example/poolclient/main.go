package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/ecloudclub/elastipool/httpx"
)

type submitRequest struct {
	Payload    map[string]any `json:"payload"`
	DurationMS int            `json:"duration_ms"`
}

type submitResponse struct {
	Shard    string `json:"shard"`
	Accepted bool   `json:"accepted"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "poolserver base URL")
	routingKey := flag.String("routing-key", "demo-client", "sticky shard routing key")
	durationMS := flag.Int("duration-ms", 50, "simulated job duration in milliseconds")
	flag.Parse()

	body := submitRequest{
		Payload:    map[string]any{"hello": "world"},
		DurationMS: *durationMS,
	}

	resp := httpx.NewRequest(context.Background(), http.MethodPost, *addr+"/submit").
		JSONBody(body).
		AddHeader("X-Routing-Key", *routingKey).
		Do()

	var out submitResponse
	if err := resp.JSONReceive(&out); err != nil {
		panic(err)
	}
	fmt.Printf("submitted to %s, accepted=%v\n", out.Shard, out.Accepted)
}
