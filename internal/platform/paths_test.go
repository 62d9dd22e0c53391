package platform

import (
	"path/filepath"
	"testing"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestBaseDirsFor(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux fallback",
			goos:       "linux",
			wantConfig: "/home/me/.config",
			wantData:   filepath.Join("/home/me", ".local", "share"),
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			wantConfig: `C:\Roaming`,
			wantData:   `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.config",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := baseDirsFor(tc.goos, envFrom(tc.env), "/home/me/.config", "/home/me")
			if err != nil {
				t.Fatalf("baseDirsFor() error = %v", err)
			}
			if got.config != tc.wantConfig || got.data != tc.wantData {
				t.Fatalf("got %#v, want config %q data %q", got, tc.wantConfig, tc.wantData)
			}
		})
	}
}

func TestBaseDirsForRejectsEmptyConfigDir(t *testing.T) {
	if _, err := baseDirsFor("linux", envFrom(nil), " ", "/home/me"); err == nil {
		t.Fatal("expected error for empty config dir")
	}
}

func TestLayoutConfigPrecedence(t *testing.T) {
	base := baseDirs{config: "/cfg", data: "/data"}
	env := envFrom(map[string]string{EnvConfig: "/env/board.toml"})

	p, err := layout(base, Options{AppName: "todoboard"}, envFrom(nil))
	if err != nil {
		t.Fatalf("layout() error = %v", err)
	}
	if p.ConfigPath != filepath.Join("/cfg", "todoboard", "config.toml") || p.ConfigSource != ConfigFromDefault {
		t.Fatalf("unexpected default config %q (%s)", p.ConfigPath, p.ConfigSource)
	}
	if p.LogDir != filepath.Join("/data", "todoboard", "logs") {
		t.Fatalf("unexpected log dir %q", p.LogDir)
	}

	p, _ = layout(base, Options{AppName: "todoboard"}, env)
	if p.ConfigPath != "/env/board.toml" || p.ConfigSource != ConfigFromEnv {
		t.Fatalf("expected env config, got %q (%s)", p.ConfigPath, p.ConfigSource)
	}

	p, _ = layout(base, Options{AppName: "todoboard", ConfigPath: "/flag.toml"}, env)
	if p.ConfigPath != "/flag.toml" || p.ConfigSource != ConfigFromFlag {
		t.Fatalf("expected flag config, got %q (%s)", p.ConfigPath, p.ConfigSource)
	}
}

func TestLayoutRejectsSeparatorsInAppName(t *testing.T) {
	if _, err := layout(baseDirs{config: "/cfg", data: "/data"}, Options{AppName: "../escape"}, envFrom(nil)); err == nil {
		t.Fatal("expected error for app name with separators")
	}
}

func TestAppName(t *testing.T) {
	cases := map[string]struct {
		name string
		dev  bool
		want string
	}{
		"default":       {name: " ", want: DefaultAppName},
		"dev suffix":    {name: "todoboard", dev: true, want: "todoboard-dev"},
		"suffix kept":   {name: "todoboard-dev", dev: true, want: "todoboard-dev"},
		"custom no dev": {name: "board", want: "board"},
	}
	for name, tc := range cases {
		if got := AppName(tc.name, tc.dev); got != tc.want {
			t.Fatalf("%s: AppName() = %q, want %q", name, got, tc.want)
		}
	}
}

func TestResolveSmoke(t *testing.T) {
	p, err := Resolve(Options{DevMode: true, Getenv: envFrom(nil)})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.AppName != "todoboard-dev" || filepath.Base(p.DataDir) != "todoboard-dev" {
		t.Fatalf("expected dev layout, got %#v", p)
	}
	if p.ConfigPath == "" || p.LogDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}
}
