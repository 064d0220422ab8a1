package client

import (
	"fmt"

	"github.com/filswan/go-swan-lib/logs"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// Disk operations live on the marketplace storage surface. They share the
// FoundryClient transport and error taxonomy.

func (fc *FoundryClient) CreateDisk(projectId string, disk models.DiskAttachment) (models.DiskResponse, error) {
	if err := disk.Validate(); err != nil {
		return models.DiskResponse{}, err
	}
	path := fmt.Sprintf("/marketplace/v1/projects/%s/disks", projectId)
	data, err := fc.http.Request("POST", path, disk, nil)
	if err != nil {
		return models.DiskResponse{}, err
	}
	var resp models.DiskResponse
	if err := ParseJSON(data, &resp, "create_disk response"); err != nil {
		return models.DiskResponse{}, err
	}
	logs.GetLogger().Debugf("created disk %s in project %s", resp.DiskId, projectId)
	return resp, nil
}

func (fc *FoundryClient) GetDisks(projectId string) ([]models.DiskResponse, error) {
	path := fmt.Sprintf("/marketplace/v1/projects/%s/disks", projectId)
	data, err := fc.http.Request("GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	var disks []models.DiskResponse
	if err := ParseJSON(data, &disks, "disks data"); err != nil {
		return nil, err
	}
	return disks, nil
}

func (fc *FoundryClient) GetDisk(projectId, diskId string) (models.DiskResponse, error) {
	path := fmt.Sprintf("/marketplace/v1/projects/%s/disks/%s", projectId, diskId)
	data, err := fc.http.Request("GET", path, nil, nil)
	if err != nil {
		return models.DiskResponse{}, err
	}
	var disk models.DiskResponse
	if err := ParseJSON(data, &disk, "disk data"); err != nil {
		return models.DiskResponse{}, err
	}
	return disk, nil
}

func (fc *FoundryClient) DeleteDisk(projectId, diskId string) error {
	path := fmt.Sprintf("/marketplace/v1/projects/%s/disks/%s", projectId, diskId)
	if _, err := fc.http.Request("DELETE", path, nil, nil); err != nil {
		return err
	}
	return nil
}
