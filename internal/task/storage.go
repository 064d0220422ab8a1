package task

import (
	"fmt"
	"strings"

	"github.com/filswan/go-swan-lib/logs"
	"github.com/google/uuid"

	"github.com/foundrytechnologies/flow-sdk/constants"
	"github.com/foundrytechnologies/flow-sdk/models"
)

// StorageAPI is the slice of the marketplace client the storage manager
// needs.
type StorageAPI interface {
	CreateDisk(projectId string, disk models.DiskAttachment) (models.DiskResponse, error)
	GetDisks(projectId string) ([]models.DiskResponse, error)
	DeleteDisk(projectId, diskId string) error
	GetRegions() ([]models.Region, error)
	GetRegionIdByName(name string) (string, error)
}

// StorageManager resolves a task's persistent_storage section into a
// concrete disk attachment, creating the disk when asked to.
type StorageManager struct {
	client StorageAPI
}

func NewStorageManager(client StorageAPI) *StorageManager {
	return &StorageManager{client: client}
}

// HandlePersistentStorage turns the task's storage request into the disk
// to attach to the bid. fallbackRegionId is used when the storage section
// does not pin a region; pass the region of the selected auction.
func (sm *StorageManager) HandlePersistentStorage(projectId string, ps *PersistentStorage, fallbackRegionId string) (*models.DiskAttachment, error) {
	if ps == nil {
		return nil, nil
	}
	if ps.Create != nil && ps.Attach != nil {
		return nil, fmt.Errorf("persistent_storage must set create or attach, not both")
	}

	switch {
	case ps.Create != nil:
		return sm.createDisk(projectId, ps.Create, fallbackRegionId)
	case ps.Attach != nil:
		return sm.attachDisk(projectId, ps.Attach)
	default:
		return nil, fmt.Errorf("persistent_storage requires a create or attach section")
	}
}

// createDisk provisions a new volume. The disk name carries a random
// suffix so repeated runs of the same task config do not collide on the
// marketplace's unique name constraint.
func (sm *StorageManager) createDisk(projectId string, create *PersistentStorageCreate, fallbackRegionId string) (*models.DiskAttachment, error) {
	if strings.TrimSpace(create.VolumeName) == "" {
		return nil, fmt.Errorf("persistent_storage.create requires volume_name")
	}

	regionId := create.RegionId
	if regionId == "" {
		regionId = fallbackRegionId
	}
	if regionId == "" {
		var err error
		regionId, err = sm.DefaultRegionId()
		if err != nil {
			return nil, err
		}
	}

	diskInterface := create.DiskInterface
	if diskInterface == "" {
		diskInterface = constants.DiskInterfaceBlock
	}
	sizeUnit := create.SizeUnit
	if sizeUnit == "" {
		sizeUnit = constants.SizeUnitGB
	}

	disk := models.DiskAttachment{
		DiskId:        uuid.NewString(),
		Name:          fmt.Sprintf("%s-%s", create.VolumeName, shortSuffix()),
		VolumeName:    create.VolumeName,
		DiskInterface: diskInterface,
		RegionId:      regionId,
		Size:          create.Size,
		SizeUnit:      sizeUnit,
	}

	created, err := sm.client.CreateDisk(projectId, disk)
	if err != nil {
		return nil, fmt.Errorf("failed create disk %s, error: %w", disk.Name, err)
	}
	logs.GetLogger().Infof("created persistent disk %s (volume %s) in region %s", created.DiskId, create.VolumeName, regionId)

	disk.DiskId = created.DiskId
	if created.Name != "" {
		disk.Name = created.Name
	}
	return &disk, nil
}

// attachDisk locates an existing volume by name.
func (sm *StorageManager) attachDisk(projectId string, attach *PersistentStorageAttach) (*models.DiskAttachment, error) {
	if strings.TrimSpace(attach.VolumeName) == "" {
		return nil, fmt.Errorf("persistent_storage.attach requires volume_name")
	}

	disks, err := sm.client.GetDisks(projectId)
	if err != nil {
		return nil, fmt.Errorf("failed list disks for project %s, error: %w", projectId, err)
	}
	for _, disk := range disks {
		if disk.VolumeName == attach.VolumeName || disk.Name == attach.VolumeName {
			if attach.RegionId != "" && disk.RegionId != "" && disk.RegionId != attach.RegionId {
				continue
			}
			return &models.DiskAttachment{
				DiskId:        disk.DiskId,
				Name:          disk.Name,
				VolumeName:    attach.VolumeName,
				DiskInterface: disk.DiskInterface,
				RegionId:      disk.RegionId,
				Size:          disk.Size,
				SizeUnit:      disk.SizeUnit,
			}, nil
		}
	}
	return nil, fmt.Errorf("no disk found with volume name: %s", attach.VolumeName)
}

// CleanupDiskByVolumeName deletes any disk carrying the volume name.
// Used to clear stale leftovers from an interrupted run before retrying.
func (sm *StorageManager) CleanupDiskByVolumeName(projectId, volumeName string) error {
	disks, err := sm.client.GetDisks(projectId)
	if err != nil {
		return fmt.Errorf("failed list disks for project %s, error: %w", projectId, err)
	}
	removed := 0
	for _, disk := range disks {
		if disk.VolumeName == volumeName || strings.HasPrefix(disk.Name, volumeName) {
			if err := sm.client.DeleteDisk(projectId, disk.DiskId); err != nil {
				return fmt.Errorf("failed delete disk %s, error: %w", disk.DiskId, err)
			}
			logs.GetLogger().Infof("removed stale disk %s (volume %s)", disk.DiskId, volumeName)
			removed++
		}
	}
	if removed == 0 {
		return fmt.Errorf("no disk found with volume name: %s", volumeName)
	}
	return nil
}

// DefaultRegionId returns the first region the marketplace advertises.
func (sm *StorageManager) DefaultRegionId() (string, error) {
	regions, err := sm.client.GetRegions()
	if err != nil {
		return "", fmt.Errorf("failed fetch regions, error: %w", err)
	}
	if len(regions) == 0 {
		return "", fmt.Errorf("no regions available")
	}
	return regions[0].RegionId, nil
}

func shortSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
