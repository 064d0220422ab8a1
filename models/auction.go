package models

// ResourcesSpecification is the caller's declarative hardware request.
// A nil/empty field means "no constraint". NumGpus is a pointer because
// only an absent value is vacuous: a spec carrying 0 or a negative count
// still compares arithmetically against the auction inventory.
type ResourcesSpecification struct {
	GpuType               string `yaml:"gpu_type" json:"gpu_type,omitempty"`
	NumGpus               *int   `yaml:"num_gpus" json:"num_gpus,omitempty"`
	IntranodeInterconnect string `yaml:"intranode_interconnect" json:"intranode_interconnect,omitempty"`
	InternodeInterconnect string `yaml:"internode_interconnect" json:"internode_interconnect,omitempty"`
	FcpInstance           string `yaml:"fcp_instance" json:"fcp_instance,omitempty"`
	NumInstances          int    `yaml:"num_instances" json:"num_instances,omitempty"`
}

// Auction is a marketplace listing of available compute capacity.
// Instances are read-only value objects; zero values stand for fields the
// server or catalog did not populate.
type Auction struct {
	ClusterId               string  `json:"cluster_id"`
	GpuType                 string  `json:"gpu_type,omitempty"`
	InventoryQuantity       int     `json:"inventory_quantity,omitempty"`
	NumGpus                 int     `json:"num_gpu,omitempty"`
	IntranodeInterconnect   string  `json:"intranode_interconnect,omitempty"`
	InternodeInterconnect   string  `json:"internode_interconnect,omitempty"`
	FcpInstance             string  `json:"fcp_instance,omitempty"`
	InstanceTypeId          string  `json:"instance_type_id,omitempty"`
	LastPrice               float64 `json:"last_price,omitempty"`
	Region                  string  `json:"region,omitempty"`
	RegionId                string  `json:"region_id,omitempty"`
	ResourceSpecificationId string  `json:"resource_specification_id,omitempty"`
}

type Region struct {
	RegionId string `json:"region_id"`
	Name     string `json:"name"`
}
