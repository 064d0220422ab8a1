package models

import (
	"fmt"
	"strings"

	"github.com/foundrytechnologies/flow-sdk/constants"
)

// DiskAttachment describes a disk to create or attach alongside a bid.
type DiskAttachment struct {
	DiskId        string `json:"disk_id"`
	Name          string `json:"name"`
	VolumeName    string `json:"volume_name,omitempty"`
	DiskInterface string `json:"disk_interface"`
	RegionId      string `json:"region_id,omitempty"`
	Size          int    `json:"size"`
	SizeUnit      string `json:"size_unit,omitempty"`
}

func (d *DiskAttachment) Validate() error {
	if strings.TrimSpace(d.DiskId) == "" {
		return fmt.Errorf("disk_id cannot be empty or whitespace")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("disk name cannot be empty or whitespace")
	}
	switch d.DiskInterface {
	case constants.DiskInterfaceBlock, constants.DiskInterfaceFile:
	default:
		return fmt.Errorf("disk_interface must be %s or %s, got: %s",
			constants.DiskInterfaceBlock, constants.DiskInterfaceFile, d.DiskInterface)
	}
	if d.Size <= 0 {
		return fmt.Errorf("disk size must be greater than 0, got: %d", d.Size)
	}
	switch strings.ToLower(d.SizeUnit) {
	case "", constants.SizeUnitGB, constants.SizeUnitTB:
	default:
		return fmt.Errorf("size_unit must be %s or %s, got: %s",
			constants.SizeUnitGB, constants.SizeUnitTB, d.SizeUnit)
	}
	return nil
}

// BidDiskAttachment is the narrower disk shape the bid API accepts.
type BidDiskAttachment struct {
	DiskId     string `json:"disk_id"`
	VolumeName string `json:"volume_name"`
}

func BidDiskAttachmentFrom(d DiskAttachment) (BidDiskAttachment, error) {
	volumeName := d.VolumeName
	if volumeName == "" {
		volumeName = d.Name
	}
	if strings.TrimSpace(d.DiskId) == "" || strings.TrimSpace(volumeName) == "" {
		return BidDiskAttachment{}, fmt.Errorf("disk attachment requires disk_id and volume_name")
	}
	return BidDiskAttachment{DiskId: d.DiskId, VolumeName: volumeName}, nil
}

// DiskResponse is the storage service's record of a disk.
type DiskResponse struct {
	DiskId        string `json:"disk_id"`
	Name          string `json:"name"`
	VolumeName    string `json:"volume_name,omitempty"`
	DiskInterface string `json:"disk_interface,omitempty"`
	RegionId      string `json:"region_id,omitempty"`
	Size          int    `json:"size,omitempty"`
	SizeUnit      string `json:"size_unit,omitempty"`
}
