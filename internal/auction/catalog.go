package auction

import (
	"fmt"
	"os"

	"github.com/filswan/go-swan-lib/logs"
	"gopkg.in/yaml.v2"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// CatalogError indicates the static catalog could not be read or parsed.
// A single malformed record is not a CatalogError; it is dropped with a
// warning so one bad entry does not sink the whole load.
type CatalogError struct {
	Path string
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("unable to load auction catalog at %s: %v", e.Path, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

type catalogRecord struct {
	BaseAuction map[interface{}]interface{} `yaml:"base_auction"`
}

// LoadCatalog parses the static auction catalog: a mapping of GPU label
// to region name to listing records. Region defaults to the enclosing
// region key when a record omits it.
func LoadCatalog(path string) ([]models.Auction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Path: path, Err: err}
	}

	var catalog map[string]map[string][]catalogRecord
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, &CatalogError{Path: path, Err: err}
	}

	var auctions []models.Auction
	for _, regionMap := range catalog {
		for regionName, records := range regionMap {
			for _, record := range records {
				auction, err := auctionFromRecord(record.BaseAuction, regionName)
				if err != nil {
					logs.GetLogger().Warnf("failed parse an auction in region %s, error: %v", regionName, err)
					continue
				}
				auctions = append(auctions, auction)
			}
		}
	}

	logs.GetLogger().Infof("loaded %d auctions from catalog %s", len(auctions), path)
	return auctions, nil
}

func auctionFromRecord(record map[interface{}]interface{}, fallbackRegion string) (models.Auction, error) {
	if record == nil {
		return models.Auction{}, fmt.Errorf("record has no base_auction")
	}

	clusterId := stringField(record, "id")
	if clusterId == "" {
		return models.Auction{}, fmt.Errorf("record is missing the auction id")
	}

	region := stringField(record, "region")
	if region == "" {
		region = fallbackRegion
	}

	return models.Auction{
		ClusterId:               clusterId,
		GpuType:                 stringField(record, "gpu_type"),
		InventoryQuantity:       intField(record, "inventory_quantity"),
		NumGpus:                 intField(record, "num_gpu"),
		IntranodeInterconnect:   stringField(record, "intranode_interconnect"),
		InternodeInterconnect:   stringField(record, "internode_interconnect"),
		FcpInstance:             stringField(record, "fcp_instance"),
		InstanceTypeId:          stringField(record, "instance_type_id"),
		LastPrice:               floatField(record, "last_price"),
		Region:                  region,
		RegionId:                stringField(record, "region_id"),
		ResourceSpecificationId: stringField(record, "resource_specification_id"),
	}, nil
}

func stringField(record map[interface{}]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

func intField(record map[interface{}]interface{}, key string) int {
	switch v := record[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func floatField(record map[interface{}]interface{}, key string) float64 {
	switch v := record[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
