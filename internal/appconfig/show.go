// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// ShowConfig prints the current configuration summary. API keys are masked;
// only their presence is reported.
func ShowConfig(out io.Writer, cfg *Config) {
	if cfg == nil || cfg.ConfigPath == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigPath)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		fallback := Config{}
		fmt.Fprintf(out, "  Debug:           %v\n", fallback.Debug)
		fmt.Fprintf(out, "  Log File:        %s\n", fallback.LogFilePath())
		fmt.Fprintf(out, "  Request Timeout: %s\n", fallback.RequestTimeout())
		return
	}

	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())

	if len(cfg.Providers) == 0 {
		fmt.Fprintln(out, "  Providers:       none configured")
		return
	}

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "  Providers:")
	for _, name := range names {
		creds := cfg.Providers[name]
		details := []string{fmt.Sprintf("api_key=%s", maskKey(creds.APIKey))}
		if creds.Version != "" {
			details = append(details, fmt.Sprintf("version=%s", creds.Version))
		}
		if creds.Endpoint != "" {
			details = append(details, fmt.Sprintf("endpoint=%s", creds.Endpoint))
		}
		fmt.Fprintf(out, "    %-24s %s\n", name, strings.Join(details, " "))
	}
}

func maskKey(key string) string {
	if strings.TrimSpace(key) == "" {
		return "(unset)"
	}
	return "(set)"
}
