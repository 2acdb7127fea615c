package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvBaseURL = "NETROUTE_BASE_URL"
	EnvHeaders = "NETROUTE_HEADERS"
	EnvProfile = "NETROUTE_PROFILE"
	EnvEnvFile = "NETROUTE_ENV_FILE"

	defaultEnvFile = ".env"
)

// Settings are the resolved defaults for building endpoints.
type Settings struct {
	// Profile is empty when no stored profile was used.
	Profile string
	BaseURL string
	// Headers become the base headers of every endpoint.
	Headers map[string]string
}

// LoadEnvFile loads variables from path, or from NETROUTE_ENV_FILE or .env
// when path is empty. Variables already set in the environment win. A
// missing default file is not an error.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		if env := strings.TrimSpace(os.Getenv(EnvEnvFile)); env != "" {
			path, explicit = env, true
		} else {
			path = defaultEnvFile
		}
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Resolve merges, lowest precedence first: the stored profile, the
// environment, then the overrides. A profile named by profileOverride or
// NETROUTE_PROFILE must exist; the implicit current profile may be missing.
func Resolve(profileOverride, baseURLOverride string) (Settings, error) {
	var s Settings

	name := strings.TrimSpace(profileOverride)
	if name == "" {
		name = strings.TrimSpace(os.Getenv(EnvProfile))
	}
	if name != "" {
		p, err := LoadProfile(name)
		if err != nil {
			return Settings{}, fmt.Errorf("profile %q: %w", name, err)
		}
		s = fromProfile(name, p)
	} else if current, err := CurrentProfile(); err == nil {
		if p, err := LoadProfile(current); err == nil {
			s = fromProfile(current, p)
		}
	}

	if env := strings.TrimSpace(os.Getenv(EnvBaseURL)); env != "" {
		s.BaseURL = env
	}
	if env := strings.TrimSpace(os.Getenv(EnvHeaders)); env != "" {
		headers, err := ParseHeaders(env)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvHeaders, err)
		}
		s.Headers = mergeHeaders(s.Headers, headers)
	}
	if override := strings.TrimSpace(baseURLOverride); override != "" {
		s.BaseURL = override
	}

	if s.BaseURL != "" {
		if _, err := ValidateBaseURL(s.BaseURL); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

func fromProfile(name string, p Profile) Settings {
	return Settings{
		Profile: name,
		BaseURL: p.BaseURL,
		Headers: mergeHeaders(nil, p.Headers),
	}
}

func mergeHeaders(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// ParseHeader splits "Name: value". The value may be empty.
func ParseHeader(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q (expected 'Name: value')", raw)
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return "", "", fmt.Errorf("invalid header name %q", name)
	}
	return name, strings.TrimSpace(value), nil
}

// ParseHeaders parses "Name: value" pairs separated by ';'. Empty segments
// are skipped.
func ParseHeaders(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, segment := range strings.Split(raw, ";") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		name, value, err := ParseHeader(segment)
		if err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}
