package auction

import (
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/foundrytechnologies/flow-sdk/models"
)

type fakeSource struct {
	auctions []models.Auction
	err      error
	calls    int
}

func (f *fakeSource) GetAuctions(projectId string) ([]models.Auction, error) {
	f.calls++
	return f.auctions, f.err
}

func TestFetchAuctionsRequiresASource(t *testing.T) {
	finder := NewFinder(&fakeSource{}, "")
	if _, err := finder.FetchAuctions("", ""); err == nil {
		t.Fatal("expected a configuration error when neither project id nor catalog path is given")
	}
}

func TestFetchAuctionsRemoteOnly(t *testing.T) {
	source := &fakeSource{auctions: []models.Auction{
		{ClusterId: "c1", InstanceTypeId: "it-1"},
		{ClusterId: "c2", InstanceTypeId: "it-2"},
	}}
	finder := NewFinder(source, "")

	auctions, err := finder.FetchAuctions("project-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(auctions) != 2 || source.calls != 1 {
		t.Fatalf("expected 2 auctions from one remote call, got %d auctions, %d calls", len(auctions), source.calls)
	}
}

func TestFetchAuctionsMissingDefaultCatalogDegradesToRemote(t *testing.T) {
	source := &fakeSource{auctions: []models.Auction{{ClusterId: "c1", InstanceTypeId: "it-1"}}}
	finder := NewFinder(source, filepath.Join(t.TempDir(), "missing.yaml"))

	auctions, err := finder.FetchAuctions("project-1", "")
	if err != nil {
		t.Fatalf("a missing default catalog should not fail the fetch: %v", err)
	}
	if len(auctions) != 1 {
		t.Fatalf("expected the remote auction, got %d", len(auctions))
	}
}

func TestFetchAuctionsEnrichesLiveWithCatalog(t *testing.T) {
	source := &fakeSource{auctions: []models.Auction{
		{ClusterId: "c1", InstanceTypeId: "it-1", LastPrice: 9.5},
	}}
	catalogPath := writeCatalog(t, `
a100:
  us-central1:
    - base_auction:
        id: cat-1
        instance_type_id: it-1
        gpu_type: NVIDIA A100
        inventory_quantity: 8
        intranode_interconnect: SXM4
        internode_interconnect: IB_1600
        fcp_instance: fh1.ultra
`)
	finder := NewFinder(source, "")

	auctions, err := finder.FetchAuctions("project-1", catalogPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(auctions) != 1 {
		t.Fatalf("expected 1 enriched auction, got %d", len(auctions))
	}
	got := auctions[0]
	if got.GpuType != "NVIDIA A100" || got.InventoryQuantity != 8 || got.FcpInstance != "fh1.ultra" {
		t.Errorf("catalog fields not merged into live auction: %+v", got)
	}
	if got.LastPrice != 9.5 || got.ClusterId != "c1" || got.InstanceTypeId != "it-1" {
		t.Errorf("live fields must win the merge: %+v", got)
	}
}

func TestEnrichWithCatalogIsIdempotent(t *testing.T) {
	live := []models.Auction{
		{ClusterId: "c1", InstanceTypeId: "it-1", LastPrice: 4.2},
		{ClusterId: "c2", InstanceTypeId: "it-absent"},
		{ClusterId: "c3"},
	}
	local := []models.Auction{
		{InstanceTypeId: "it-1", GpuType: "A100", InventoryQuantity: 8, Region: "us-central1"},
	}

	once := enrichWithCatalog(live, local)
	twice := enrichWithCatalog(once, local)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("enrichment is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if once[1].ClusterId != "c2" || once[2].ClusterId != "c3" {
		t.Error("auctions without a catalog match must pass through unchanged")
	}
}

func TestFindMatchingAuctionsPreservesOrder(t *testing.T) {
	finder := NewFinder(&fakeSource{}, "")
	var auctions []models.Auction
	for i := 0; i < 5; i++ {
		auctions = append(auctions, models.Auction{
			ClusterId:         fmt.Sprintf("c%d", i),
			GpuType:           "A100",
			InventoryQuantity: i * 2,
		})
	}

	matching := finder.FindMatchingAuctions(auctions, models.ResourcesSpecification{
		GpuType: "A100",
		NumGpus: intPtr(4),
	})

	want := []string{"c2", "c3", "c4"}
	if len(matching) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(matching))
	}
	for i, a := range matching {
		if a.ClusterId != want[i] {
			t.Errorf("match %d: got %s, want %s (input order must be preserved)", i, a.ClusterId, want[i])
		}
	}
}
