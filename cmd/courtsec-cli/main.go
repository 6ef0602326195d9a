// Command courtsec-cli is a command-line client for the courtsec API.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/courtsec/courtsec/client"
)

// Build-time variables set via ldflags.
var (
	version   = "1.0.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3030"

var (
	apiClient *client.Client
	flagURL   string
	flagKey   string
	flagFmt   string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("courtsec-cli version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("courtsec-cli version %s-dev", version)
}

// profileConfig holds connection settings for a single profile.
type profileConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// profilesFile is the config file structure. Top-level url and api_key are
// read when no profile matches.
type profilesFile struct {
	URL           string                   `yaml:"url,omitempty"`
	APIKey        string                   `yaml:"api_key,omitempty"`
	Profiles      map[string]profileConfig `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "courtsec-cli",
		Short:   "Client for the courtroom security incident log",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			opts := []client.Option{client.WithUserAgent("courtsec-cli/" + version)}
			if flagKey != "" {
				opts = append(opts, client.WithAPIKey(flagKey))
			}
			apiClient = client.New(flagURL, opts...)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "Server URL (env: COURTSEC_URL)")
	rootCmd.PersistentFlags().StringVar(&flagKey, "api-key", "", "API key or bearer token (env: COURTSEC_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	initCmd := newInitCmd()
	initCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup
	doctorCmd := newDoctorCmd()
	doctorCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(newIncidentCmd())
	rootCmd.AddCommand(newAttachmentCmd())
	rootCmd.AddCommand(newCourthouseCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newAdminCmd())

	return rootCmd
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".courtsec", "config.yaml"), nil
}

func loadConfigFile() (string, *profilesFile, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfgPath, nil, err
	}
	var cfg profilesFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfgPath, nil, err
	}
	return cfgPath, &cfg, nil
}

// settings resolves the URL and credential from cfg, an already-loaded config
// file that may be nil.
func (cfg *profilesFile) settings() (url, apiKey string) {
	if cfg == nil {
		return "", ""
	}
	url, apiKey = cfg.URL, cfg.APIKey
	name := cfg.ActiveProfile
	if name == "" {
		name = "default"
	}
	if p, ok := cfg.Profiles[name]; ok {
		if p.URL != "" {
			url = p.URL
		}
		if p.APIKey != "" {
			apiKey = p.APIKey
		}
	}
	return url, apiKey
}

// resolveConfig applies, in order of precedence, flags, environment and the
// config file.
func resolveConfig() {
	flagURL, flagKey = resolveSettings(flagURL, flagKey)
}

func resolveSettings(url, apiKey string) (string, string) {
	if url == defaultURL {
		if v := os.Getenv("COURTSEC_URL"); v != "" {
			url = v
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("COURTSEC_API_KEY")
	}

	_, cfg, err := loadConfigFile()
	if err != nil {
		return url, apiKey
	}
	fileURL, fileKey := cfg.settings()
	if url == defaultURL && fileURL != "" {
		url = fileURL
	}
	if apiKey == "" && fileKey != "" {
		apiKey = fileKey
	}
	return url, apiKey
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
