// Demo of the buildbar library against a local mock registry.
//
// Usage:
//
//	go run ./example
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/buildbar"
	"github.com/jpalmerr/buildbar/internal/mockregistry"
)

const mockAddr = "localhost:9999"

func main() {
	registry := mockregistry.New(
		mockregistry.WithHold(5*time.Second, 15*time.Second),
		mockregistry.WithLatency(200*time.Millisecond),
	)
	go func() {
		if err := http.ListenAndServe(mockAddr, registry); err != nil {
			slog.Error("mock registry error", "error", err)
			os.Exit(1)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	// grid: 3 Quay repositories from one declaration
	monitors, err := buildbar.NewMonitorGrid(buildbar.Quay,
		buildbar.WithURLTemplate("http://"+mockAddr+"/api/v1/repository/acme/{{.repo}}/build/"),
		buildbar.WithWebTemplate("https://quay.io/repository/acme/{{.repo}}?tab=builds"),
		buildbar.WithDimensions(map[string][]string{
			"repo": {"widget", "gadget", "sprocket"},
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor grid", "error", err)
		os.Exit(1)
	}

	// one Docker Hub repository with its own timeout
	hub, err := buildbar.NewMonitor("http://"+mockAddr+"/v2/repositories/acme/base/buildhistory/",
		buildbar.DockerHub,
		buildbar.WithWebURL("https://hub.docker.com/r/acme/base/builds/"),
		buildbar.WithTimeout(2*time.Second),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}
	monitors = append([]buildbar.Monitor{hub}, monitors...)

	bb, err := buildbar.New(buildbar.WithMonitors(monitors...))
	if err != nil {
		slog.Error("failed to create buildbar", "error", err)
		os.Exit(1)
	}
	defer bb.Close()

	fmt.Println("buildbar demo: 1 Docker Hub + 3 Quay repositories, refreshed every 5s")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = bb.Watch(ctx, 5*time.Second, func(results []buildbar.BuildStatus, err error) {
		if err != nil {
			fmt.Print(buildbar.RenderError(err))
		} else {
			fmt.Print(buildbar.Render(results))
		}
		fmt.Println()
	})
	if err != nil {
		slog.Error("watch error", "error", err)
		os.Exit(1)
	}
}
