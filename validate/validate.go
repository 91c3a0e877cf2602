// Command validate provides a small CLI that validates arena settings
// JSON files. It checks:
//   - JSON structure and known fields
//   - Listen address sanity (non-empty host, port in range)
//   - Send queue bounds (positive, and large enough for burst traffic)
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// settingsFile mirrors the JSON schema of the server settings.
type settingsFile struct {
	Host                  string `json:"host"`
	Port                  int    `json:"port"`
	SendQueueSize         int    `json:"send_queue_size"`
	AnnounceUnjoinedLeave bool   `json:"announce_unjoined_leave"`
	Debug                 bool   `json:"debug"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateSettings loads and validates a single settings JSON file.
func validateSettings(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filePath,
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	var settings settingsFile
	if err := decoder.Decode(&settings); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if settings.Host == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "host must not be empty")
	}

	if settings.Port <= 0 || settings.Port > 65535 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("port must be in 1..65535, got %d", settings.Port))
	}

	if settings.SendQueueSize <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("send_queue_size must be positive, got %d", settings.SendQueueSize))
	} else if settings.SendQueueSize < 16 {
		result.Errors = append(result.Errors, fmt.Sprintf("warning: send_queue_size %d is small; bursts of joins can disconnect slow clients", settings.SendQueueSize))
	}

	return result
}

// main validates each settings file given on the command line (default
// settings.json), printing a concise report and exiting non-zero if any
// are invalid.
func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		files = []string{"settings.json"}
	}

	allValid := true
	for _, file := range files {
		result := validateSettings(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		fmt.Println("Some settings files have errors")
		os.Exit(1)
	}
	fmt.Println("All settings files are valid")
}
