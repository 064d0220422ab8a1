package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/filswan/go-swan-lib/logs"

	"github.com/foundrytechnologies/flow-sdk/conf"
	"github.com/foundrytechnologies/flow-sdk/constants"
	"github.com/foundrytechnologies/flow-sdk/internal/auction"
	"github.com/foundrytechnologies/flow-sdk/internal/bid"
	"github.com/foundrytechnologies/flow-sdk/internal/client"
	"github.com/foundrytechnologies/flow-sdk/models"
)

// FoundryAPI is the slice of the marketplace client the task manager
// needs for identity and instance lookups.
type FoundryAPI interface {
	UserId() string
	GetProjects() ([]models.Project, error)
	GetSshKeys(projectId string) ([]models.SshKey, error)
	GetInstances(projectId string) (map[string][]models.Instance, error)
	GetRegionIdByName(name string) (string, error)
}

// ErrNoMatchingAuctions means the marketplace currently has no capacity
// satisfying the task's resource specification.
var ErrNoMatchingAuctions = errors.New("no matching auctions found for the requested resources")

// TaskStatus is the state of a submitted task: its orders and any
// instances running against them.
type TaskStatus struct {
	Bids      []models.Bid
	Instances []models.Instance
}

// TaskManager sequences a task from YAML config to placed orders:
// resolve identity, match an auction, provision storage, build the
// startup script and submit the bid.
type TaskManager struct {
	cfg     *conf.FlowConfig
	client  FoundryAPI
	finder  *auction.Finder
	bids    *bid.Manager
	storage *StorageManager
}

func NewTaskManager(cfg *conf.FlowConfig, api FoundryAPI, finder *auction.Finder, bids *bid.Manager, storage *StorageManager) *TaskManager {
	return &TaskManager{
		cfg:     cfg,
		client:  api,
		finder:  finder,
		bids:    bids,
		storage: storage,
	}
}

// NewTaskManagerFromConfig builds a manager backed by a live marketplace
// client.
func NewTaskManagerFromConfig(cfg *conf.FlowConfig) (*TaskManager, error) {
	fc, err := client.NewFoundryClient(cfg)
	if err != nil {
		return nil, err
	}
	finder := auction.NewFinder(fc, cfg.FOUNDRY.CatalogPath)
	return NewTaskManager(cfg, fc, finder, bid.NewManager(fc), NewStorageManager(fc)), nil
}

// Run submits the task. A disk name collision left over from an
// interrupted earlier run is cleaned up and the submission retried once.
func (tm *TaskManager) Run(taskCfg *TaskConfig) ([]models.BidResponse, error) {
	responses, err := tm.runOnce(taskCfg)
	if err == nil {
		return responses, nil
	}
	if !isDiskConflict(err) {
		return nil, err
	}

	volumeName := persistentVolumeName(taskCfg)
	if volumeName == "" {
		return nil, err
	}
	logs.GetLogger().Warnf("disk conflict while submitting task %s; removing stale disk %s and retrying", taskCfg.Name, volumeName)

	projectId, _, resolveErr := tm.resolveIdentity(taskCfg)
	if resolveErr != nil {
		return nil, resolveErr
	}
	if cleanupErr := tm.storage.CleanupDiskByVolumeName(projectId, volumeName); cleanupErr != nil {
		return nil, fmt.Errorf("failed cleanup conflicting disk, error: %w", cleanupErr)
	}
	return tm.runOnce(taskCfg)
}

func (tm *TaskManager) runOnce(taskCfg *TaskConfig) ([]models.BidResponse, error) {
	projectId, sshKeyId, err := tm.resolveIdentity(taskCfg)
	if err != nil {
		return nil, err
	}

	selected, err := tm.selectAuction(projectId, taskCfg.ResourcesSpecification)
	if err != nil {
		return nil, err
	}

	regionId, err := tm.resolveRegion(selected)
	if err != nil {
		return nil, err
	}

	disk, err := tm.storage.HandlePersistentStorage(projectId, taskCfg.PersistentStorage, regionId)
	if err != nil {
		return nil, err
	}

	var volumeName string
	var diskAttachments []models.DiskAttachment
	if disk != nil {
		volumeName = disk.VolumeName
		diskAttachments = append(diskAttachments, *disk)
	}

	startupScript, err := BuildStartupScript(taskCfg, volumeName)
	if err != nil {
		return nil, err
	}

	limitPriceCents, err := tm.resolveLimitPriceCents(taskCfg)
	if err != nil {
		return nil, err
	}

	quantity := instanceQuantity(taskCfg)
	logs.GetLogger().Infof("submitting task %s: %d x %s at limit price %d cents on cluster %s",
		taskCfg.Name, quantity, selected.InstanceTypeId, limitPriceCents, selected.ClusterId)

	params := bid.SubmitParams{
		ClusterId:        selected.ClusterId,
		InstanceQuantity: quantity,
		InstanceTypeId:   selected.InstanceTypeId,
		LimitPriceCents:  limitPriceCents,
		OrderName:        taskCfg.Name,
		SshKeyId:         sshKeyId,
		UserId:           tm.client.UserId(),
		StartupScript:    startupScript,
		DiskAttachments:  diskAttachments,
	}
	if taskCfg.TaskManagement != nil && taskCfg.TaskManagement.AllowPartialFulfillment {
		params.AllowPartialFulfillment = true
		params.ChunkSize = taskCfg.TaskManagement.ChunkSize
	}
	return tm.bids.SubmitBid(projectId, params)
}

// Status reports the task's orders and running instances. An empty
// taskName returns everything in the project.
func (tm *TaskManager) Status(taskCfg *TaskConfig, taskName string, showAll bool) (*TaskStatus, error) {
	projectId, _, err := tm.resolveIdentity(taskCfg)
	if err != nil {
		return nil, err
	}

	bids, err := tm.bids.GetBids(projectId)
	if err != nil {
		return nil, err
	}
	instancesByBid, err := tm.client.GetInstances(projectId)
	if err != nil {
		return nil, err
	}

	status := &TaskStatus{}
	for _, b := range bids {
		if taskName != "" && b.Name != taskName {
			continue
		}
		if !showAll && b.Status == constants.BidStatusTerminated {
			continue
		}
		status.Bids = append(status.Bids, b)
	}
	for _, instances := range instancesByBid {
		for _, inst := range instances {
			if taskName != "" && !strings.HasPrefix(inst.Name, taskName) {
				continue
			}
			status.Instances = append(status.Instances, inst)
		}
	}
	return status, nil
}

// Cancel removes the order carrying the task name.
func (tm *TaskManager) Cancel(taskCfg *TaskConfig, taskName string) error {
	if strings.TrimSpace(taskName) == "" {
		return fmt.Errorf("task name is required to cancel a bid")
	}
	projectId, _, err := tm.resolveIdentity(taskCfg)
	if err != nil {
		return err
	}

	bids, err := tm.bids.GetBids(projectId)
	if err != nil {
		return err
	}
	for _, b := range bids {
		if b.Name == taskName {
			return tm.bids.CancelBid(projectId, b.Id)
		}
	}
	return fmt.Errorf("no bid found with name: %s", taskName)
}

// resolveIdentity maps configured project and ssh key names to ids. The
// task config takes precedence over the global config.
func (tm *TaskManager) resolveIdentity(taskCfg *TaskConfig) (projectId, sshKeyId string, err error) {
	projectName := tm.cfg.FOUNDRY.ProjectName
	sshKeyName := tm.cfg.FOUNDRY.SshKeyName
	if taskCfg != nil {
		if taskCfg.ProjectName != "" {
			projectName = taskCfg.ProjectName
		}
		if taskCfg.SshKeyName != "" {
			sshKeyName = taskCfg.SshKeyName
		}
	}
	if projectName == "" {
		return "", "", fmt.Errorf("project name is not configured")
	}
	if sshKeyName == "" {
		return "", "", fmt.Errorf("ssh key name is not configured")
	}

	projects, err := tm.client.GetProjects()
	if err != nil {
		return "", "", err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, projectName) {
			projectId = p.Id
			break
		}
	}
	if projectId == "" {
		return "", "", fmt.Errorf("project not found: %s", projectName)
	}

	keys, err := tm.client.GetSshKeys(projectId)
	if err != nil {
		return "", "", err
	}
	for _, k := range keys {
		if strings.EqualFold(k.Name, sshKeyName) {
			sshKeyId = k.Id
			break
		}
	}
	if sshKeyId == "" {
		return "", "", fmt.Errorf("ssh key not found: %s", sshKeyName)
	}
	return projectId, sshKeyId, nil
}

// selectAuction returns the first auction matching the resource
// specification.
func (tm *TaskManager) selectAuction(projectId string, criteria models.ResourcesSpecification) (models.Auction, error) {
	auctions, err := tm.finder.FetchAuctions(projectId, "")
	if err != nil {
		return models.Auction{}, err
	}
	matching := tm.finder.FindMatchingAuctions(auctions, criteria)
	if len(matching) == 0 {
		return models.Auction{}, ErrNoMatchingAuctions
	}
	logs.GetLogger().Infof("%d of %d auctions match the resource specification", len(matching), len(auctions))
	return matching[0], nil
}

// resolveRegion returns the auction's region id, resolving the region
// name through the marketplace when the listing only carries a name.
// A listing whose region cannot be resolved aborts the run.
func (tm *TaskManager) resolveRegion(a models.Auction) (string, error) {
	if a.RegionId != "" {
		return a.RegionId, nil
	}
	if a.Region == "" {
		return "", fmt.Errorf("auction %s carries no region information", a.ClusterId)
	}
	regionId, err := tm.client.GetRegionIdByName(a.Region)
	if err != nil {
		return "", fmt.Errorf("failed resolve region %s for auction %s, error: %w", a.Region, a.ClusterId, err)
	}
	return regionId, nil
}

// resolveLimitPriceCents takes an explicit utility threshold price when
// set, otherwise the configured price for the task's priority tier.
func (tm *TaskManager) resolveLimitPriceCents(taskCfg *TaskConfig) (int, error) {
	if taskCfg.TaskManagement != nil && taskCfg.TaskManagement.UtilityThresholdPrice > 0 {
		return int(taskCfg.TaskManagement.UtilityThresholdPrice * 100), nil
	}
	return tm.cfg.PriorityPriceCents(taskCfg.Priority())
}

func instanceQuantity(taskCfg *TaskConfig) int {
	if taskCfg.TaskManagement != nil && taskCfg.TaskManagement.NumInstances > 0 {
		return taskCfg.TaskManagement.NumInstances
	}
	if taskCfg.NumInstances > 0 {
		return taskCfg.NumInstances
	}
	if taskCfg.ResourcesSpecification.NumInstances > 0 {
		return taskCfg.ResourcesSpecification.NumInstances
	}
	return 1
}

func persistentVolumeName(taskCfg *TaskConfig) string {
	if taskCfg.PersistentStorage == nil {
		return ""
	}
	if taskCfg.PersistentStorage.Create != nil {
		return taskCfg.PersistentStorage.Create.VolumeName
	}
	if taskCfg.PersistentStorage.Attach != nil {
		return taskCfg.PersistentStorage.Attach.VolumeName
	}
	return ""
}

// isDiskConflict recognizes the marketplace's disk name collision error.
func isDiskConflict(err error) bool {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != 400 && apiErr.StatusCode != 409 {
		return false
	}
	lower := strings.ToLower(apiErr.Body)
	return strings.Contains(lower, "disk") && strings.Contains(lower, "already exists")
}
