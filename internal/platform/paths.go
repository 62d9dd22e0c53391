// Package platform resolves where todoboard keeps its config file and logs.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories when no override is given.
const DefaultAppName = "todoboard"

// Environment variables read during resolution.
const (
	EnvConfig  = "TODOBOARD_CONFIG"
	EnvAppName = "TODOBOARD_APP_NAME"
	EnvDevMode = "TODOBOARD_DEV_MODE"
	EnvBaseURL = "TODOBOARD_BASE_URL"
)

// ConfigSource reports which input decided the config file location.
type ConfigSource string

// Config sources in precedence order.
const (
	ConfigFromFlag    ConfigSource = "flag"
	ConfigFromEnv     ConfigSource = "env"
	ConfigFromDefault ConfigSource = "default"
)

// Paths is the resolved on-disk layout for one app name.
type Paths struct {
	AppName      string
	ConfigPath   string
	ConfigSource ConfigSource
	DataDir      string
	LogDir       string
}

// Options carries the command-line inputs that influence resolution.
type Options struct {
	AppName    string
	DevMode    bool
	ConfigPath string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Resolve computes the layout for the running OS.
func Resolve(opts Options) (Paths, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	userConfig, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user home dir: %w", err)
	}
	base, err := baseDirsFor(runtime.GOOS, getenv, userConfig, home)
	if err != nil {
		return Paths{}, err
	}
	return layout(base, opts, getenv)
}

// AppName applies the dev suffix to name, falling back to DefaultAppName.
func AppName(name string, devMode bool) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultAppName
	}
	if devMode && !strings.HasSuffix(name, "-dev") {
		name += "-dev"
	}
	return name
}

type baseDirs struct {
	config string
	data   string
}

// baseDirsFor picks the per-user config and data roots. Linux follows XDG with
// ~/.local/share for data; windows prefers APPDATA and LOCALAPPDATA; other
// systems keep both under the user config dir.
func baseDirsFor(goos string, getenv func(string) string, userConfig, home string) (baseDirs, error) {
	if strings.TrimSpace(userConfig) == "" {
		return baseDirs{}, fmt.Errorf("empty user config dir")
	}
	dirs := baseDirs{config: userConfig, data: userConfig}
	switch goos {
	case "linux":
		dirs.config = firstNonEmpty(getenv("XDG_CONFIG_HOME"), userConfig)
		fallback := ""
		if strings.TrimSpace(home) != "" {
			fallback = filepath.Join(home, ".local", "share")
		}
		dirs.data = firstNonEmpty(getenv("XDG_DATA_HOME"), fallback, dirs.config)
	case "windows":
		dirs.config = firstNonEmpty(getenv("APPDATA"), userConfig)
		dirs.data = firstNonEmpty(getenv("LOCALAPPDATA"), dirs.config)
	}
	return dirs, nil
}

func layout(base baseDirs, opts Options, getenv func(string) string) (Paths, error) {
	appName := AppName(opts.AppName, opts.DevMode)
	if strings.ContainsAny(appName, `/\`) {
		return Paths{}, fmt.Errorf("app name %q must not contain path separators", appName)
	}
	dataDir := filepath.Join(base.data, appName)
	paths := Paths{
		AppName:      appName,
		ConfigPath:   filepath.Join(base.config, appName, "config.toml"),
		ConfigSource: ConfigFromDefault,
		DataDir:      dataDir,
		LogDir:       filepath.Join(dataDir, "logs"),
	}
	if flagPath := strings.TrimSpace(opts.ConfigPath); flagPath != "" {
		paths.ConfigPath, paths.ConfigSource = flagPath, ConfigFromFlag
	} else if envPath := strings.TrimSpace(getenv(EnvConfig)); envPath != "" {
		paths.ConfigPath, paths.ConfigSource = envPath, ConfigFromEnv
	}
	return paths, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
