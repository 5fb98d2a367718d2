// Package docker probes the local container engine over the Docker API.
package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"

	"github.com/opsrelay/stackctl/internal/core/command"
)

// Prober tests the connection to the engine the compose relays depend on.
type Prober struct{}

// Ping connects to the engine and reports its version. A failure here
// means every compose relay would fail too, which is exactly what the
// doctor command exists to surface.
func (Prober) Ping(ctx context.Context) (command.EngineInfo, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return command.EngineInfo{}, fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	version, err := cli.ServerVersion(ctx)
	if err != nil {
		return command.EngineInfo{}, fmt.Errorf("connect to docker: %w", err)
	}

	return command.EngineInfo{
		Version:    version.Version,
		APIVersion: version.APIVersion,
		OS:         version.Os,
	}, nil
}
