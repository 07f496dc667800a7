package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/slashdevops/deviceid"
	"github.com/slashdevops/deviceid/internal/config"
	"gopkg.in/yaml.v3"
)

type hashOutput struct {
	Hash        string         `json:"hash" yaml:"hash"`
	Format      int            `json:"format" yaml:"format"`
	Length      int            `json:"length" yaml:"length"`
	Diagnostics map[string]any `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type attributesOutput struct {
	deviceid.Attributes `yaml:",inline"`
	ModelName           string   `json:"model_name" yaml:"model_name"`
	Degraded            []string `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

type externalOutput struct {
	ExternalID string `json:"external_id" yaml:"external_id"`
	Available  bool   `json:"available" yaml:"available"`
	Provider   string `json:"provider" yaml:"provider"`
	TraceID    string `json:"trace_id,omitempty" yaml:"trace_id,omitempty"`
}

type validateOutput struct {
	Valid        bool   `json:"valid" yaml:"valid"`
	ExpectedHash string `json:"expected_hash" yaml:"expected_hash"`
}

// render writes v in the configured structured encoding, or calls text for
// plain output.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)

	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err := enc.Encode(v)

		return errors.Join(err, enc.Close())

	default:
		return text(w)
	}
}

func formatDiagnostics(diag *deviceid.DiagnosticInfo) map[string]any {
	if diag == nil {
		return nil
	}

	result := map[string]any{
		"collected": diag.Collected,
	}

	if len(diag.Errors) > 0 {
		errs := make(map[string]string, len(diag.Errors))
		for component, err := range diag.Errors {
			errs[component] = err.Error()
		}
		result["errors"] = errs
	}

	return result
}

func printDiagnostics(w io.Writer, diag *deviceid.DiagnosticInfo) {
	if diag == nil {
		fmt.Fprintln(w, "no diagnostic information available")

		return
	}

	fmt.Fprintln(w, "\nDiagnostics:")
	if len(diag.Collected) > 0 {
		fmt.Fprintf(w, "  Collected: %s\n", strings.Join(diag.Collected, ", "))
	}

	if len(diag.Errors) > 0 {
		components := make([]string, 0, len(diag.Errors))
		for component := range diag.Errors {
			components = append(components, component)
		}
		sort.Strings(components)

		fmt.Fprintln(w, "  Errors:")
		for _, component := range components {
			fmt.Fprintf(w, "    %s: %v\n", component, diag.Errors[component])
		}
	}
}
