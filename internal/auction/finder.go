package auction

import (
	"fmt"
	"os"

	"github.com/filswan/go-swan-lib/logs"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// Source is the slice of the marketplace client the finder needs.
type Source interface {
	GetAuctions(projectId string) ([]models.Auction, error)
}

// Finder loads auctions from the marketplace and/or a static catalog,
// enriches live listings with catalog data and filters collections
// against a resource specification.
type Finder struct {
	client             Source
	defaultCatalogPath string
}

func NewFinder(client Source, defaultCatalogPath string) *Finder {
	return &Finder{client: client, defaultCatalogPath: defaultCatalogPath}
}

// FetchAuctions returns auctions from the marketplace (projectId set),
// the catalog (catalogPath set, or the configured default exists), or
// the enrichment merge of both. Supplying neither source is a
// configuration error.
func (f *Finder) FetchAuctions(projectId, catalogPath string) ([]models.Auction, error) {
	var live []models.Auction
	var local []models.Auction
	var err error

	if projectId != "" {
		logs.GetLogger().Infof("fetching auctions from marketplace for project %s", projectId)
		live, err = f.client.GetAuctions(projectId)
		if err != nil {
			return nil, err
		}
		logs.GetLogger().Infof("marketplace returned %d auctions", len(live))
	}

	if catalogPath != "" {
		local, err = LoadCatalog(catalogPath)
		if err != nil {
			return nil, err
		}
	} else if f.defaultCatalogPath != "" {
		if _, statErr := os.Stat(f.defaultCatalogPath); statErr == nil {
			local, err = LoadCatalog(f.defaultCatalogPath)
			if err != nil {
				return nil, err
			}
		} else {
			// A missing default catalog degrades to remote-only mode.
			logs.GetLogger().Debugf("default catalog not found at %s", f.defaultCatalogPath)
		}
	}

	switch {
	case len(live) > 0 && len(local) > 0:
		return enrichWithCatalog(live, local), nil
	case len(live) > 0:
		return live, nil
	case len(local) > 0:
		return local, nil
	}

	if projectId == "" && catalogPath == "" {
		return nil, fmt.Errorf("either a project id or a catalog path must be provided to fetch auctions")
	}
	return nil, nil
}

// FindMatchingAuctions filters auctions against the criteria, preserving
// the input order.
func (f *Finder) FindMatchingAuctions(auctions []models.Auction, criteria models.ResourcesSpecification) []models.Auction {
	matcher := NewMatcher(criteria)
	var matching []models.Auction
	for _, a := range auctions {
		if matcher.Matches(a) {
			matching = append(matching, a)
		}
	}
	logs.GetLogger().Debugf("found %d matching auctions (of %d total)", len(matching), len(auctions))
	return matching
}

// enrichWithCatalog fills gaps in live auctions from catalog entries that
// share an instance type id. Live values win whenever both sides carry a
// field; instance_type_id always comes from the live side. Enriching an
// already-enriched list again is a no-op.
func enrichWithCatalog(live, local []models.Auction) []models.Auction {
	localByInstanceType := make(map[string]models.Auction, len(local))
	for _, a := range local {
		if a.InstanceTypeId != "" {
			localByInstanceType[a.InstanceTypeId] = a
		}
	}

	enriched := make([]models.Auction, 0, len(live))
	for _, a := range live {
		if a.InstanceTypeId == "" {
			enriched = append(enriched, a)
			continue
		}
		match, ok := localByInstanceType[a.InstanceTypeId]
		if !ok {
			enriched = append(enriched, a)
			continue
		}
		enriched = append(enriched, mergeAuctions(a, match))
	}
	return enriched
}

func mergeAuctions(live, catalog models.Auction) models.Auction {
	merged := models.Auction{
		ClusterId:               firstNonEmpty(live.ClusterId, catalog.ClusterId),
		GpuType:                 firstNonEmpty(live.GpuType, catalog.GpuType),
		InventoryQuantity:       live.InventoryQuantity,
		NumGpus:                 live.NumGpus,
		IntranodeInterconnect:   firstNonEmpty(live.IntranodeInterconnect, catalog.IntranodeInterconnect),
		InternodeInterconnect:   firstNonEmpty(live.InternodeInterconnect, catalog.InternodeInterconnect),
		FcpInstance:             firstNonEmpty(live.FcpInstance, catalog.FcpInstance),
		InstanceTypeId:          live.InstanceTypeId,
		LastPrice:               live.LastPrice,
		Region:                  firstNonEmpty(live.Region, catalog.Region),
		RegionId:                firstNonEmpty(live.RegionId, catalog.RegionId),
		ResourceSpecificationId: firstNonEmpty(live.ResourceSpecificationId, catalog.ResourceSpecificationId),
	}
	if merged.InventoryQuantity == 0 {
		merged.InventoryQuantity = catalog.InventoryQuantity
	}
	if merged.NumGpus == 0 {
		merged.NumGpus = catalog.NumGpus
	}
	if merged.LastPrice == 0 {
		merged.LastPrice = catalog.LastPrice
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
