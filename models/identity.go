package models

type User struct {
	Id    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Project struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type SshKey struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key,omitempty"`
}

// Instance is a running allocation attached to a fulfilled bid.
type Instance struct {
	InstanceId     string `json:"instance_id"`
	Name           string `json:"name,omitempty"`
	InstanceStatus string `json:"instance_status,omitempty"`
	IpAddress      string `json:"ip_address,omitempty"`
	Category       string `json:"category,omitempty"`
	RegionId       string `json:"region_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}
