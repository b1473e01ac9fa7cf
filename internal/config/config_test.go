// Copyright 2025 Fleetshare Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func resetGlobalConfig() {
	globalConfig = &Config{
		DataDir:         ".covo",
		BindAddr:        "0.0.0.0",
		ApiPort:         8080,
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
dataDir: "/var/lib/covo"
bindAddr: "127.0.0.1"
apiPort: 9090
blobPlugin: "badger"
metadataPlugin: "sqlite"
shutdownTimeout: "45s"
tracing: true
tracingStdout: true
adminIds: [1, 42]
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-covo.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	expected := &Config{
		DataDir:         "/var/lib/covo",
		BindAddr:        "127.0.0.1",
		ApiPort:         9090,
		BlobPlugin:      "badger",
		MetadataPlugin:  "sqlite",
		ShutdownTimeout: "45s",
		Tracing:         true,
		TracingStdout:   true,
		AdminIDs:        []uint{1, 42},
	}

	actual, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	expected := &Config{
		DataDir:         ".covo",
		BindAddr:        "0.0.0.0",
		ApiPort:         8080,
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"config mismatch without file:\nExpected: %+v\nGot:      %+v",
			expected,
			cfg,
		)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	resetGlobalConfig()

	t.Setenv("DUMMY_API_PORT", "7070")
	t.Setenv("COVO_DATABASE_METADATA_PLUGIN", "sqlite")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.ApiPort != 7070 {
		t.Errorf("expected ApiPort to be 7070, got: %v", cfg.ApiPort)
	}
	if cfg.MetadataPlugin != "sqlite" {
		t.Errorf(
			"expected MetadataPlugin to be sqlite, got: %v",
			cfg.MetadataPlugin,
		)
	}
}

func TestApiListenAddress(t *testing.T) {
	resetGlobalConfig()
	cfg := GetConfig()
	expected := "0.0.0.0:8080"
	if addr := cfg.ApiListenAddress(); addr != expected {
		t.Errorf("expected %s, got: %s", expected, addr)
	}
}
