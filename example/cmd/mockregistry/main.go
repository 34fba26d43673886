// Standalone mock registry for trying the CLI without real credentials.
//
// Usage:
//
//	go run ./example/cmd/mockregistry
//
// Then point config/monitors.yaml at it, rebuild, and in another terminal:
//
//	go run ./cmd/buildbar watch -i 10s
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/buildbar/internal/mockregistry"
)

func main() {
	fmt.Println("Mock registry starting on :9999")
	fmt.Println("  Docker Hub: /v2/repositories/{org}/{image}/buildhistory/")
	fmt.Println("  Quay:       /api/v1/repository/{namespace}/{name}/build/")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	registry := mockregistry.New(
		mockregistry.WithHold(20*time.Second, 60*time.Second),
		mockregistry.WithLatency(200*time.Millisecond),
		mockregistry.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	)

	if err := http.ListenAndServe(":9999", registry); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
