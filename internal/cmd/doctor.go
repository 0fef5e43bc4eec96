package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwell-sh/inkwell/internal/config"
	"github.com/inkwell-sh/inkwell/internal/lockfile"
	"github.com/inkwell-sh/inkwell/internal/storage"
)

var doctorCmd = &cobra.Command{
	Use:    "doctor",
	Short:  "Check inkwell installation and dependencies",
	Hidden: true,
	Long: `Run diagnostic checks on your inkwell installation.

This command checks:
- Directories and file permissions
- Configuration validity
- Provider credentials
- Draft database
- Editor lock status

Examples:
  inkwell doctor`,
	RunE: runDoctor,
}

type checkResult struct {
	name    string
	status  string // "ok", "warn", "error"
	message string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%sinkwell Doctor%s\n", colorBold, colorReset)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println()

	results := make([]checkResult, 0, 16)

	// Check directories
	results = append(results, checkDirectories()...)

	// Check configuration
	results = append(results, checkConfiguration())

	// Check provider credentials
	results = append(results, checkProviderCredentials()...)

	// Check draft database
	results = append(results, checkDatabase())

	// Check editor lock
	results = append(results, checkEditorLock())

	// Print results
	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		var statusIcon string
		switch r.status {
		case "ok":
			statusIcon = colorGreen + "[OK]" + colorReset
		case "warn":
			statusIcon = colorYellow + "[WARN]" + colorReset
			hasWarnings = true
		case "error":
			statusIcon = colorRed + "[ERROR]" + colorReset
			hasErrors = true
		}

		fmt.Printf("  %s %s\n", statusIcon, r.name)
		if r.message != "" {
			fmt.Printf("       %s%s%s\n", colorDim, r.message, colorReset)
		}
	}

	fmt.Println()

	if hasErrors {
		fmt.Printf("%sSome checks failed. Please fix the errors above.%s\n", colorRed, colorReset)
		return fmt.Errorf("doctor found errors")
	}

	if hasWarnings {
		fmt.Printf("%sAll critical checks passed, but there are warnings.%s\n", colorYellow, colorReset)
	} else {
		fmt.Printf("%sAll checks passed!%s\n", colorGreen, colorReset)
	}

	return nil
}

func checkDirectories() []checkResult {
	var results []checkResult
	paths := config.DefaultPaths()

	dirs := []struct {
		name string
		path string
	}{
		{"Config directory", paths.ConfigDir},
		{"Data directory", paths.DataDir},
		{"Runtime directory", paths.RuntimeDir},
	}

	for _, d := range dirs {
		if _, err := os.Stat(d.path); os.IsNotExist(err) {
			results = append(results, checkResult{
				name:    d.name,
				status:  "warn",
				message: fmt.Sprintf("Missing: %s (will be created when needed)", d.path),
			})
		} else if err != nil {
			results = append(results, checkResult{
				name:    d.name,
				status:  "error",
				message: fmt.Sprintf("Error accessing: %s", d.path),
			})
		} else {
			results = append(results, checkResult{
				name:    d.name,
				status:  "ok",
				message: d.path,
			})
		}
	}

	return results
}

func checkConfiguration() checkResult {
	paths := config.DefaultPaths()
	configFile := paths.ConfigFile()

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return checkResult{
			name:    "Configuration",
			status:  "error",
			message: fmt.Sprintf("Failed to load: %v", err),
		}
	}

	if err := cfg.Validate(); err != nil {
		return checkResult{
			name:    "Configuration",
			status:  "error",
			message: fmt.Sprintf("Invalid: %v", err),
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return checkResult{
			name:    "Configuration",
			status:  "ok",
			message: "Using defaults (no config file)",
		}
	}

	return checkResult{
		name:    "Configuration",
		status:  "ok",
		message: configFile,
	}
}

func checkProviderCredentials() []checkResult {
	var results []checkResult

	cfg, err := config.Load()
	if err != nil {
		// Already reported by checkConfiguration
		return results
	}

	if cfg.Provider.Name != "gemini" {
		results = append(results, checkResult{
			name:    "Provider",
			status:  "warn",
			message: "No provider configured. Assisted continuations are disabled.",
		})
		return results
	}

	if os.Getenv(cfg.Provider.APIKeyEnv) == "" {
		results = append(results, checkResult{
			name:    "Provider API key",
			status:  "error",
			message: fmt.Sprintf("%s is not set", cfg.Provider.APIKeyEnv),
		})
	} else {
		results = append(results, checkResult{
			name:    "Provider API key",
			status:  "ok",
			message: fmt.Sprintf("%s is set", cfg.Provider.APIKeyEnv),
		})
	}

	if cfg.Provider.UseSearch {
		if os.Getenv(cfg.Provider.SearchKeyEnv) == "" {
			results = append(results, checkResult{
				name:    "Search API key",
				status:  "warn",
				message: fmt.Sprintf("%s is not set; suggestions will skip grounding", cfg.Provider.SearchKeyEnv),
			})
		} else {
			results = append(results, checkResult{
				name:    "Search API key",
				status:  "ok",
				message: fmt.Sprintf("%s is set", cfg.Provider.SearchKeyEnv),
			})
		}
	}

	return results
}

func checkDatabase() checkResult {
	cfg, err := config.Load()
	if err != nil {
		return checkResult{name: "Draft database", status: "error", message: err.Error()}
	}
	paths := config.DefaultPaths()
	dbPath := databasePath(cfg, paths)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return checkResult{
			name:    "Draft database",
			status:  "ok",
			message: fmt.Sprintf("Not yet created: %s", dbPath),
		}
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return checkResult{
			name:    "Draft database",
			status:  "error",
			message: fmt.Sprintf("Failed to open: %v", err),
		}
	}
	defer store.Close()

	return checkResult{
		name:    "Draft database",
		status:  "ok",
		message: dbPath,
	}
}

func checkEditorLock() checkResult {
	paths := config.DefaultPaths()
	pid, held, err := lockfile.ReadHeldPID(paths.LockFile())
	if err != nil {
		return checkResult{
			name:    "Editor lock",
			status:  "warn",
			message: fmt.Sprintf("Could not inspect: %v", err),
		}
	}
	if held {
		return checkResult{
			name:    "Editor lock",
			status:  "ok",
			message: fmt.Sprintf("Editor running (pid %d)", pid),
		}
	}
	return checkResult{
		name:    "Editor lock",
		status:  "ok",
		message: "No editor running",
	}
}
