package main

import (
	"os"

	"github.com/opsrelay/stackctl/internal/core/command"
	"github.com/opsrelay/stackctl/internal/core/compose"
)

// fileInspector loads a topology file from disk and summarizes its
// service set for the services command.
type fileInspector struct{}

func (fileInspector) Services(path string) ([]command.ServiceSummary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	services, err := compose.Summarize(string(content))
	if err != nil {
		return nil, err
	}

	summaries := make([]command.ServiceSummary, 0, len(services))
	for _, svc := range services {
		summaries = append(summaries, command.ServiceSummary{
			Name:  svc.Name,
			Image: svc.Image,
			Ports: svc.Ports,
		})
	}
	return summaries, nil
}
