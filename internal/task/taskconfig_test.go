package task

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/foundrytechnologies/flow-sdk/constants"
)

func writeTaskConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "task.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed write task config fixture: %v", err)
	}
	return path
}

func TestParseTaskConfig(t *testing.T) {
	path := writeTaskConfig(t, `
name: train-llm
task_management:
  num_instances: 4
  priority: high
  utility_threshold_price: 20.5
resources_specification:
  gpu_type: A100
  num_gpus: 8
  internode_interconnect: IB_1600
ports:
  - 8080
  - "9000-9002"
  - external: 443
    internal: 8443
ephemeral_storage_config:
  type: raid0
  mounts:
    /workspace: /scratch
persistent_storage:
  mount_dir: /data
  create:
    volume_name: training-data
    size: 500
container_image:
  image_name: pytorch/pytorch:latest
startup_script: |
  echo ready
project_name: research
ssh_key_name: laptop
`)

	cfg, err := ParseTaskConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "train-llm" || cfg.ProjectName != "research" || cfg.SshKeyName != "laptop" {
		t.Errorf("top-level fields not parsed: %+v", cfg)
	}
	if cfg.TaskManagement.Priority != "high" || cfg.TaskManagement.UtilityThresholdPrice != 20.5 {
		t.Errorf("task_management not parsed: %+v", cfg.TaskManagement)
	}
	if cfg.ResourcesSpecification.GpuType != "A100" {
		t.Errorf("resources_specification not parsed: %+v", cfg.ResourcesSpecification)
	}
	if cfg.ResourcesSpecification.NumGpus == nil || *cfg.ResourcesSpecification.NumGpus != 8 {
		t.Errorf("num_gpus should parse to a set pointer: %+v", cfg.ResourcesSpecification.NumGpus)
	}
	wantPorts := []PortMapping{
		{External: 8080, Internal: 8080},
		{External: 9000, Internal: 9000},
		{External: 9001, Internal: 9001},
		{External: 9002, Internal: 9002},
		{External: 443, Internal: 8443},
	}
	if !reflect.DeepEqual(cfg.Ports, wantPorts) {
		t.Errorf("ports: got %+v, want %+v", cfg.Ports, wantPorts)
	}
	if cfg.PersistentStorage.Create.VolumeName != "training-data" {
		t.Errorf("persistent_storage not parsed: %+v", cfg.PersistentStorage)
	}
	if cfg.EphemeralStorageConfig.Mounts["/workspace"] != "/scratch" {
		t.Errorf("ephemeral mounts not parsed: %+v", cfg.EphemeralStorageConfig)
	}
}

func TestParseTaskConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing name", "task_management:\n  priority: high\n"},
		{"blank name", "name: \"  \"\n"},
		{"unknown priority", "name: t\ntask_management:\n  priority: urgent\n"},
		{"port out of range", "name: t\nports:\n  - 70000\n"},
		{"inverted port range", "name: t\nports:\n  - \"9000-8000\"\n"},
		{"garbage port", "name: t\nports:\n  - \"abc\"\n"},
		{"not yaml", "{{{{"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTaskConfig(t, tc.content)
			if _, err := ParseTaskConfig(path); err == nil {
				t.Errorf("expected a parse error for %s", tc.name)
			}
		})
	}
}

func TestTaskConfigPriorityDefaultsToStandard(t *testing.T) {
	cfg := &TaskConfig{Name: "t"}
	if got := cfg.Priority(); got != constants.PriorityStandard {
		t.Errorf("got %q, want %q", got, constants.PriorityStandard)
	}
	cfg.TaskManagement = &TaskManagement{Priority: "CRITICAL"}
	if got := cfg.Priority(); got != constants.PriorityCritical {
		t.Errorf("priority should be lowercased, got %q", got)
	}
}
