package config

// Defaults returns the built-in configuration every client starts from.
// File layers merge over this; nothing here is mandatory in any file.
func Defaults() Config {
	return Config{
		"version": "1.0",
		"browser": Config{
			"headless":     true,
			"verbose":      false,
			"browser_type": "chromium",
			"timeout_ms":   30000,
		},
		"crawling": Config{
			"max_pages":          100,
			"max_depth":          5,
			"max_concurrent":     5,
			"respect_robots_txt": true,
		},
		"rate_limit": Config{
			"delay_seconds":           1,
			"max_requests_per_second": 2,
		},
		"extraction": Config{
			"enable_javascript": true,
			"wait_for_network":  true,
			"scroll_to_bottom":  true,
		},
		"downloads": Config{
			"enabled":           true,
			"path":              "./downloads",
			"max_file_size_mb":  100,
			"timeout_seconds":   30,
			"retry_attempts":    3,
		},
		"output": Config{
			"path":              "./output",
			"generate_json":     true,
			"generate_markdown": true,
			"generate_csv":      true,
		},
		"logging": Config{
			"level": "info",
			"json":  false,
		},
	}
}
