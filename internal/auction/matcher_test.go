package auction

import (
	"testing"

	"github.com/foundrytechnologies/flow-sdk/models"
)

func intPtr(v int) *int {
	return &v
}

func a100Auction() models.Auction {
	return models.Auction{
		ClusterId:             "cluster-a100",
		GpuType:               "NVIDIA A100 80GB",
		InventoryQuantity:     8,
		IntranodeInterconnect: "SXM4",
		InternodeInterconnect: "IB_1600",
		FcpInstance:           "fh1.ultra",
		InstanceTypeId:        "it-a100",
	}
}

func TestMatcherEmptyCriteriaMatchesEverything(t *testing.T) {
	matcher := NewMatcher(models.ResourcesSpecification{})
	auctions := []models.Auction{
		a100Auction(),
		{ClusterId: "empty"},
		{ClusterId: "h100", GpuType: "H100", InventoryQuantity: 16},
	}
	for _, a := range auctions {
		if !matcher.Matches(a) {
			t.Errorf("empty criteria should match auction %s", a.ClusterId)
		}
	}
}

func TestMatcherGpuTypeWordBoundary(t *testing.T) {
	cases := []struct {
		name     string
		criteria string
		actual   string
		want     bool
	}{
		{"exact", "A100", "A100", true},
		{"case insensitive", "a100", "NVIDIA A100 80GB", true},
		{"word within listing", "A100", "8x NVIDIA A100 SXM4", true},
		{"substring of larger token", "A10", "NVIDIA A100 80GB", false},
		{"different model", "H100", "NVIDIA A100 80GB", false},
		{"surrounding whitespace trimmed", "  A100  ", "NVIDIA A100", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matcher := NewMatcher(models.ResourcesSpecification{GpuType: tc.criteria})
			a := a100Auction()
			a.GpuType = tc.actual
			if got := matcher.Matches(a); got != tc.want {
				t.Errorf("criteria %q against %q: got %v, want %v", tc.criteria, tc.actual, got, tc.want)
			}
		})
	}
}

func TestMatcherNumGpus(t *testing.T) {
	cases := []struct {
		name      string
		required  *int
		inventory int
		want      bool
	}{
		{"absent count is vacuous", nil, 0, true},
		{"inventory meets requirement", intPtr(4), 8, true},
		{"inventory equals requirement", intPtr(8), 8, true},
		{"inventory below requirement", intPtr(16), 8, false},
		{"zero count compares arithmetically", intPtr(0), 0, true},
		{"negative count compares arithmetically", intPtr(-1), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matcher := NewMatcher(models.ResourcesSpecification{NumGpus: tc.required})
			a := a100Auction()
			a.InventoryQuantity = tc.inventory
			if got := matcher.Matches(a); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatcherInterconnectsCaseInsensitive(t *testing.T) {
	matcher := NewMatcher(models.ResourcesSpecification{
		IntranodeInterconnect: "sxm4",
		InternodeInterconnect: "ib_1600",
	})
	if !matcher.Matches(a100Auction()) {
		t.Error("interconnect checks should compare case-insensitively")
	}
}

func TestMatcherFcpInstanceExact(t *testing.T) {
	matcher := NewMatcher(models.ResourcesSpecification{FcpInstance: "fh1.ultra"})
	if !matcher.Matches(a100Auction()) {
		t.Error("exact instance name should match")
	}

	matcher = NewMatcher(models.ResourcesSpecification{FcpInstance: "FH1.ULTRA"})
	if matcher.Matches(a100Auction()) {
		t.Error("instance name comparison is case-sensitive and should not match")
	}
}

// TestMatcherAllCriteria exercises a full specification against a mixed
// inventory: only listings satisfying every check survive, and flipping
// any single field on a matching auction breaks the match.
func TestMatcherAllCriteria(t *testing.T) {
	criteria := models.ResourcesSpecification{
		GpuType:               "A100",
		NumGpus:               intPtr(4),
		IntranodeInterconnect: "SXM4",
		InternodeInterconnect: "IB_1600",
		FcpInstance:           "fh1.ultra",
	}
	matcher := NewMatcher(criteria)

	if !matcher.Matches(a100Auction()) {
		t.Fatal("fully conforming auction should match")
	}

	smaller := a100Auction()
	smaller.InventoryQuantity = 4
	if !matcher.Matches(smaller) {
		t.Error("auction with exactly the required inventory should match")
	}

	mutations := map[string]func(*models.Auction){
		"gpu type":  func(a *models.Auction) { a.GpuType = "NVIDIA H100 80GB" },
		"inventory": func(a *models.Auction) { a.InventoryQuantity = 2 },
		"intranode": func(a *models.Auction) { a.IntranodeInterconnect = "PCIe" },
		"internode": func(a *models.Auction) { a.InternodeInterconnect = "ETH_100" },
		"instance":  func(a *models.Auction) { a.FcpInstance = "fh1.medium" },
	}
	for name, mutate := range mutations {
		a := a100Auction()
		mutate(&a)
		if matcher.Matches(a) {
			t.Errorf("auction with mismatched %s should not match", name)
		}
	}
}
