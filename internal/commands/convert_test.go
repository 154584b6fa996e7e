package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/gerunddev/wikivault/internal/config"
	"github.com/gerunddev/wikivault/internal/export"
)

func boolPtr(b bool) *bool { return &b }

func TestParseConvertArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    ConvertArgs
		wantErr bool
	}{
		{
			name: "input only",
			args: []string{"export.xml"},
			want: ConvertArgs{Input: "export.xml"},
		},
		{
			name: "input and output with flags",
			args: []string{"--skip-redirects", "export.xml", "vault", "--verbose", "--renderer", "none"},
			want: ConvertArgs{Input: "export.xml", OutputDir: "vault", SkipRedirects: boolPtr(true), Verbose: boolPtr(true), Renderer: "none"},
		},
		{
			name: "equals form",
			args: []string{"export.xml", "--renderer=api", "--config=/etc/wikivault.yaml", "-v"},
			want: ConvertArgs{Input: "export.xml", Renderer: "api", ConfigPath: "/etc/wikivault.yaml", Verbose: boolPtr(true)},
		},
		{
			name: "explicit booleans",
			args: []string{"export.xml", "--skip-redirects=false", "--verbose=true"},
			want: ConvertArgs{Input: "export.xml", SkipRedirects: boolPtr(false), Verbose: boolPtr(true)},
		},
		{name: "bad boolean", args: []string{"export.xml", "--skip-redirects=maybe"}, wantErr: true},
		{name: "missing input", args: nil, wantErr: true},
		{name: "too many positionals", args: []string{"a", "b", "c"}, wantErr: true},
		{name: "unknown flag", args: []string{"export.xml", "--dry-run"}, wantErr: true},
		{name: "flag without value", args: []string{"export.xml", "--renderer"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConvertArgs(tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Errorf("ParseConvertArgs() error = %v, want ErrUsage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConvertArgs() error = %v", err)
			}
			if !reflect.DeepEqual(got, &tt.want) {
				t.Errorf("ParseConvertArgs() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

const testExport = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.11/">
  <siteinfo>
    <sitename>Test Wiki</sitename>
    <base>https://wiki.invalid/wiki/Main_Page</base>
  </siteinfo>
  <page>
    <title>The One Ring</title>
    <revision><text>{{Infobox_artifact|name=The One Ring}}
Forged in [[Mount_Doom|the mountain]]. [[Category:Items]]</text></revision>
  </page>
  <page>
    <title>Ring</title>
    <redirect title="The One Ring" />
    <revision><text>#REDIRECT [[The One Ring]]</text></revision>
  </page>
</mediawiki>`

// setupRun writes an export and a config selecting the passthrough renderer
func setupRun(t *testing.T, exportXML string) (input, configPath, outDir string) {
	t.Helper()
	dir := t.TempDir()

	original := config.ConfigPath
	config.ConfigPath = func() string { return filepath.Join(dir, "unused.yaml") }
	t.Cleanup(func() { config.ConfigPath = original })
	t.Setenv(config.EnvConfigPath, "")

	input = filepath.Join(dir, "export.xml")
	if err := os.WriteFile(input, []byte(exportXML), 0644); err != nil {
		t.Fatal(err)
	}
	configPath = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("renderer: none\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return input, configPath, filepath.Join(dir, "vault")
}

func TestRunConvert(t *testing.T) {
	input, configPath, outDir := setupRun(t, testExport)
	var logs bytes.Buffer

	result, cfg, err := RunConvert(context.Background(), &ConvertArgs{
		Input:         input,
		OutputDir:     outDir,
		ConfigPath:    configPath,
		SkipRedirects: boolPtr(true),
	}, &logs, nil)
	if err != nil {
		t.Fatalf("RunConvert() error = %v\n%s", err, logs.String())
	}
	if cfg.OutputDir != outDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, outDir)
	}
	if result.Converted != 1 || result.Skipped != 1 || result.Indexes != 2 {
		t.Errorf("result = %+v", result)
	}

	note, err := os.ReadFile(filepath.Join(outDir, "The One Ring.md"))
	if err != nil {
		t.Fatalf("note missing: %v", err)
	}
	for _, want := range []string{`title: "The One Ring"`, `- "items"`, `- "artifacts"`, "[[Mount Doom|the mountain]]"} {
		if !strings.Contains(string(note), want) {
			t.Errorf("note missing %q:\n%s", want, note)
		}
	}
	for _, index := range []string{"_items.md", "_artifacts.md"} {
		if _, err := os.Stat(filepath.Join(outDir, "_indexes", index)); err != nil {
			t.Errorf("index %s missing: %v", index, err)
		}
	}
	if !strings.Contains(logs.String(), "conversion completed") {
		t.Errorf("logs missing completion line:\n%s", logs.String())
	}
}

func TestRunConvertNoHost(t *testing.T) {
	noHost := strings.Replace(testExport, "<base>https://wiki.invalid/wiki/Main_Page</base>", "", 1)
	input, configPath, outDir := setupRun(t, noHost)

	_, _, err := RunConvert(context.Background(), &ConvertArgs{Input: input, OutputDir: outDir, ConfigPath: configPath}, &bytes.Buffer{}, nil)
	if !errors.Is(err, export.ErrNoWikiHost) {
		t.Errorf("RunConvert() error = %v, want ErrNoWikiHost", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("output directory created despite fatal error")
	}
}

func TestRunConvertBadInput(t *testing.T) {
	input, configPath, outDir := setupRun(t, "<mediawiki><page>")

	if _, _, err := RunConvert(context.Background(), &ConvertArgs{Input: input, OutputDir: outDir, ConfigPath: configPath}, &bytes.Buffer{}, nil); err == nil {
		t.Error("RunConvert() should fail on malformed XML")
	}
}

func TestRunConvertRendererFlagValidated(t *testing.T) {
	input, configPath, outDir := setupRun(t, testExport)

	_, _, err := RunConvert(context.Background(), &ConvertArgs{Input: input, OutputDir: outDir, ConfigPath: configPath, Renderer: "latex"}, &bytes.Buffer{}, nil)
	if err == nil {
		t.Error("RunConvert() should reject an unknown renderer flag")
	}
}

func TestRunConvertFlagOverridesConfigBool(t *testing.T) {
	input, configPath, outDir := setupRun(t, testExport)
	if err := os.WriteFile(configPath, []byte("renderer: none\nskip_redirects: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		skipRedirects *bool
		wantSkipped   int
	}{
		{"config value kept", nil, 1},
		{"flag turns it off", boolPtr(false), 0},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(outDir, strconv.Itoa(i))
			result, cfg, err := RunConvert(context.Background(), &ConvertArgs{
				Input:         input,
				OutputDir:     out,
				ConfigPath:    configPath,
				SkipRedirects: tt.skipRedirects,
			}, &bytes.Buffer{}, nil)
			if err != nil {
				t.Fatalf("RunConvert() error = %v", err)
			}
			if result.Skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", result.Skipped, tt.wantSkipped)
			}
			if cfg.SkipRedirects != (tt.wantSkipped == 1) {
				t.Errorf("cfg.SkipRedirects = %v", cfg.SkipRedirects)
			}
		})
	}
}
