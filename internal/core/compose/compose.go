// Package compose summarizes the service set a topology file defines.
// Pure functions over YAML content - no I/O, no side effects.
package compose

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrEmptyInput is returned for an empty topology file.
	ErrEmptyInput = errors.New("topology file is empty")

	// ErrInvalidYAML is returned when the content is not valid YAML.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrNoServices is returned when the topology defines no services.
	ErrNoServices = errors.New("topology must define at least one service")
)

// =============================================================================
// Service Summary
// =============================================================================

// Service is the operator-facing view of one topology service.
type Service struct {
	Name  string
	Image string
	Ports []string // "published:target" mappings
}

// Summarize parses compose YAML and returns its services sorted by name.
func Summarize(yamlContent string) ([]Service, error) {
	project, err := load(yamlContent)
	if err != nil {
		return nil, err
	}
	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	services := make([]Service, 0, len(project.Services))
	for _, svc := range project.Services {
		summary := Service{
			Name:  svc.Name,
			Image: svc.Image,
		}
		for _, port := range svc.Ports {
			if port.Published != "" {
				summary.Ports = append(summary.Ports,
					fmt.Sprintf("%s:%d", port.Published, port.Target))
			} else {
				summary.Ports = append(summary.Ports,
					fmt.Sprintf("%d", port.Target))
			}
		}
		services = append(services, summary)
	}

	sort.Slice(services, func(i, j int) bool {
		return services[i].Name < services[j].Name
	})

	return services, nil
}

// load parses the content with compose-go, in-memory and without
// resolving external files.
func load(yamlContent string) (*types.Project, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(yamlContent), &dict); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if dict == nil {
		return nil, ErrEmptyInput
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("stackctl", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = true // env interpolation belongs to the runtime
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return project, nil
}
