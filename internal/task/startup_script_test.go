package task

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
	"strings"
	"testing"
)

// decodeBootstrap pulls the embedded payload back out of the bootstrap
// stub the way an instance would: base64 decode, then gunzip.
func decodeBootstrap(t *testing.T, bootstrap string) string {
	t.Helper()
	start := strings.Index(bootstrap, `echo "`)
	if start < 0 {
		t.Fatalf("bootstrap carries no encoded payload:\n%s", bootstrap)
	}
	rest := bootstrap[start+len(`echo "`):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		t.Fatalf("unterminated payload in bootstrap:\n%s", bootstrap)
	}

	compressed, err := base64.StdEncoding.DecodeString(rest[:end])
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("payload is not gzip: %v", err)
	}
	decoded, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("failed decompress payload: %v", err)
	}
	return string(decoded)
}

func TestScriptBuilderPreambleOnly(t *testing.T) {
	script := NewScriptBuilder().Build()
	if !strings.HasPrefix(script, "#!/bin/bash\nset -ex\n") {
		t.Errorf("script must start with the standard preamble:\n%s", script)
	}
}

func TestScriptBuilderSegments(t *testing.T) {
	builder := NewScriptBuilder()
	if err := builder.InjectPorts([]PortMapping{{External: 443, Internal: 8443}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := builder.InjectEphemeralStorage(&EphemeralStorageConfig{
		Mounts: map[string]string{"/workspace": "/scratch"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := builder.InjectPersistentStorage("training-data", "/data"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := builder.InjectContainerImage(&ContainerImageConfig{ImageName: "pytorch/pytorch:latest"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	builder.InjectCustomScript("#!/bin/bash\necho user part")

	script := builder.Build()
	for _, want := range []string{
		"--dport 443", "--to-port 8443",
		"/ephemeral/scratch", "/workspace",
		"training-data", "mount \"$PERSISTENT_DEVICE\" /data",
		"docker pull pytorch/pytorch:latest",
		"echo user part",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
	if strings.Count(script, "#!") != 1 {
		t.Errorf("custom script shebang must be stripped:\n%s", script)
	}
}

func TestScriptBuilderSkipsEmptySegments(t *testing.T) {
	builder := NewScriptBuilder()
	if err := builder.InjectPorts(nil); err != nil {
		t.Fatal(err)
	}
	if err := builder.InjectEphemeralStorage(nil); err != nil {
		t.Fatal(err)
	}
	if err := builder.InjectContainerImage(nil); err != nil {
		t.Fatal(err)
	}
	builder.InjectCustomScript("   ")

	if script := builder.Build(); script != scriptPreamble {
		t.Errorf("empty sections must add nothing:\n%s", script)
	}
}

func TestBuildBootstrapRoundTrips(t *testing.T) {
	builder := NewScriptBuilder()
	builder.InjectCustomScript("echo payload marker")

	bootstrap, err := builder.BuildBootstrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(bootstrap, "base64 -d | gunzip") {
		t.Errorf("bootstrap must decode its payload on the instance:\n%s", bootstrap)
	}

	decoded := decodeBootstrap(t, bootstrap)
	if decoded != builder.Build() {
		t.Errorf("decoded payload differs from the built script:\n%s", decoded)
	}
	if !strings.Contains(decoded, "echo payload marker") {
		t.Errorf("payload lost the custom script:\n%s", decoded)
	}
}

func TestBuildStartupScriptFromTaskConfig(t *testing.T) {
	cfg := &TaskConfig{
		Name:  "train-llm",
		Ports: []PortMapping{{External: 8080, Internal: 8080}},
		PersistentStorage: &PersistentStorage{
			MountDir: "/data",
			Create:   &PersistentStorageCreate{VolumeName: "training-data", Size: 100},
		},
		StartupScript: "echo task body",
	}

	bootstrap, err := BuildStartupScript(cfg, "training-data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := decodeBootstrap(t, bootstrap)
	for _, want := range []string{"--dport 8080", "training-data", "echo task body"} {
		if !strings.Contains(decoded, want) {
			t.Errorf("assembled script missing %q:\n%s", want, decoded)
		}
	}
}
