package task

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/foundrytechnologies/flow-sdk/constants"
	"github.com/foundrytechnologies/flow-sdk/models"
)

// TaskConfig is the user-facing YAML task definition: what to run, on
// what hardware, at what priority, with which storage and ports.
type TaskConfig struct {
	Name                   string                        `yaml:"name"`
	NumInstances           int                           `yaml:"num_instances"`
	TaskManagement         *TaskManagement               `yaml:"task_management"`
	ResourcesSpecification models.ResourcesSpecification `yaml:"resources_specification"`
	// Ports is filled from the raw entries during parsing; an entry can
	// be a bare port, a mapping, or a "start-end" range.
	Ports                  []PortMapping                 `yaml:"-"`
	EphemeralStorageConfig *EphemeralStorageConfig       `yaml:"ephemeral_storage_config"`
	PersistentStorage      *PersistentStorage            `yaml:"persistent_storage"`
	ContainerImage         *ContainerImageConfig         `yaml:"container_image"`
	StartupScript          string                        `yaml:"startup_script"`
	ProjectName            string                        `yaml:"project_name"`
	SshKeyName             string                        `yaml:"ssh_key_name"`
}

type TaskManagement struct {
	NumInstances          int     `yaml:"num_instances"`
	Priority              string  `yaml:"priority"`
	UtilityThresholdPrice float64 `yaml:"utility_threshold_price"`

	// AllowPartialFulfillment splits the order into independently
	// fulfillable chunks of ChunkSize instances.
	AllowPartialFulfillment bool `yaml:"allow_partial_fulfillment"`
	ChunkSize               int  `yaml:"chunk_size"`
}

// PortMapping exposes an instance port.
type PortMapping struct {
	External int `yaml:"external"`
	Internal int `yaml:"internal"`
}

type EphemeralStorageConfig struct {
	Type   string            `yaml:"type"`
	Mounts map[string]string `yaml:"mounts"`
}

type PersistentStorage struct {
	MountDir string                   `yaml:"mount_dir"`
	Attach   *PersistentStorageAttach `yaml:"attach"`
	Create   *PersistentStorageCreate `yaml:"create"`
}

type PersistentStorageCreate struct {
	VolumeName    string `yaml:"volume_name"`
	Size          int    `yaml:"size"`
	SizeUnit      string `yaml:"size_unit"`
	RegionId      string `yaml:"region_id"`
	DiskInterface string `yaml:"disk_interface"`
}

type PersistentStorageAttach struct {
	VolumeName string `yaml:"volume_name"`
	RegionId   string `yaml:"region_id"`
}

type ContainerImageConfig struct {
	ImageName    string `yaml:"image_name"`
	BuildContext string `yaml:"build_context"`
	RunOptions   string `yaml:"run_options"`
}

// rawTaskConfig defers port decoding so a port entry can be a number,
// a mapping or a range string.
type rawTaskConfig struct {
	TaskConfig `yaml:",inline"`
	RawPorts   []interface{} `yaml:"ports"`
}

func ParseTaskConfig(path string) (*TaskConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed read task config %s, error: %w", path, err)
	}

	var raw rawTaskConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed parse task config %s, error: %w", path, err)
	}

	cfg := raw.TaskConfig
	cfg.Ports = nil
	for _, entry := range raw.RawPorts {
		mappings, err := expandPortEntry(entry)
		if err != nil {
			return nil, err
		}
		cfg.Ports = append(cfg.Ports, mappings...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *TaskConfig) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("task name is required")
	}
	if c.TaskManagement != nil && c.TaskManagement.Priority != "" {
		switch strings.ToLower(c.TaskManagement.Priority) {
		case constants.PriorityCritical, constants.PriorityHigh, constants.PriorityStandard, constants.PriorityLow:
		default:
			return fmt.Errorf("invalid priority level: %s", c.TaskManagement.Priority)
		}
	}
	for _, p := range c.Ports {
		if err := validatePort(p.External); err != nil {
			return err
		}
		if err := validatePort(p.Internal); err != nil {
			return err
		}
	}
	return nil
}

// Priority returns the configured priority tier, defaulting to standard.
func (c *TaskConfig) Priority() string {
	if c.TaskManagement == nil || c.TaskManagement.Priority == "" {
		return constants.PriorityStandard
	}
	return strings.ToLower(c.TaskManagement.Priority)
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port number must be between 1 and 65535, got: %d", port)
	}
	return nil
}

func expandPortEntry(entry interface{}) ([]PortMapping, error) {
	switch v := entry.(type) {
	case int:
		return []PortMapping{{External: v, Internal: v}}, nil
	case string:
		return expandPortString(v)
	case map[interface{}]interface{}:
		external, ok := v["external"].(int)
		if !ok {
			return nil, fmt.Errorf("port mapping requires an integer external port")
		}
		internal, ok := v["internal"].(int)
		if !ok {
			internal = external
		}
		return []PortMapping{{External: external, Internal: internal}}, nil
	default:
		return nil, fmt.Errorf("invalid port specification: %v", entry)
	}
}

func expandPortString(spec string) ([]PortMapping, error) {
	if start, end, found := strings.Cut(spec, "-"); found {
		startPort, err1 := strconv.Atoi(strings.TrimSpace(start))
		endPort, err2 := strconv.Atoi(strings.TrimSpace(end))
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("port range must contain valid integers, got: %s", spec)
		}
		if startPort > endPort {
			return nil, fmt.Errorf("port range start must not exceed end, got: %s", spec)
		}
		var mappings []PortMapping
		for p := startPort; p <= endPort; p++ {
			mappings = append(mappings, PortMapping{External: p, Internal: p})
		}
		return mappings, nil
	}

	port, err := strconv.Atoi(strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("invalid port specification: %s", spec)
	}
	return []PortMapping{{External: port, Internal: port}}, nil
}
