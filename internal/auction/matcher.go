package auction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/filswan/go-swan-lib/logs"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// CheckResult records the outcome of one criterion so failures can be
// reported in aggregate without re-running the checks.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// Matcher decides whether an auction satisfies a resource specification.
// Unspecified criteria are vacuously true; the auction matches only when
// every specified check passes.
type Matcher struct {
	criteria models.ResourcesSpecification
}

func NewMatcher(criteria models.ResourcesSpecification) *Matcher {
	return &Matcher{criteria: criteria}
}

func (m *Matcher) Matches(a models.Auction) bool {
	results := []CheckResult{
		m.checkGpuType(a),
		m.checkNumGpus(a),
		m.checkInternodeInterconnect(a),
		m.checkIntranodeInterconnect(a),
		m.checkFcpInstance(a),
	}

	var failing []string
	for _, res := range results {
		if !res.Passed {
			failing = append(failing, fmt.Sprintf("%s: %s", res.Name, res.Detail))
		}
	}
	if len(failing) > 0 {
		logs.GetLogger().Debugf("auction %s failed criteria checks:\n  - %s",
			a.ClusterId, strings.Join(failing, "\n  - "))
		return false
	}
	return true
}

func (m *Matcher) checkGpuType(a models.Auction) CheckResult {
	if m.criteria.GpuType == "" {
		return CheckResult{Name: "GPU Type", Passed: true, Detail: "no GPU type specified; skipping check"}
	}

	expected := strings.ToLower(strings.TrimSpace(m.criteria.GpuType))
	actual := strings.ToLower(a.GpuType)
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(expected) + `\b`)

	passed := pattern.MatchString(actual)
	detail := fmt.Sprintf("GPU type '%s' matches the expected '%s'", a.GpuType, m.criteria.GpuType)
	if !passed {
		detail = fmt.Sprintf("expected GPU type '%s' but got '%s'", m.criteria.GpuType, a.GpuType)
	}
	return CheckResult{Name: "GPU Type", Passed: passed, Detail: detail}
}

func (m *Matcher) checkNumGpus(a models.Auction) CheckResult {
	// Only an absent count is vacuous. Zero or negative values still
	// compare against the inventory, which makes them always satisfied.
	if m.criteria.NumGpus == nil {
		return CheckResult{Name: "Number of GPUs", Passed: true, Detail: "no GPU count specified; skipping check"}
	}

	required := *m.criteria.NumGpus
	actual := a.InventoryQuantity
	passed := actual >= required
	detail := fmt.Sprintf("auction has %d GPUs which meets the required %d", actual, required)
	if !passed {
		detail = fmt.Sprintf("needed >= %d GPUs, but auction has %d", required, actual)
	}
	return CheckResult{Name: "Number of GPUs", Passed: passed, Detail: detail}
}

func (m *Matcher) checkInternodeInterconnect(a models.Auction) CheckResult {
	if m.criteria.InternodeInterconnect == "" {
		return CheckResult{Name: "Inter-node Interconnect", Passed: true, Detail: "no inter-node interconnect specified; skipping check"}
	}

	passed := strings.EqualFold(a.InternodeInterconnect, m.criteria.InternodeInterconnect)
	detail := fmt.Sprintf("inter-node interconnect '%s' matches expected", a.InternodeInterconnect)
	if !passed {
		detail = fmt.Sprintf("expected inter-node interconnect '%s' but got '%s'",
			m.criteria.InternodeInterconnect, a.InternodeInterconnect)
	}
	return CheckResult{Name: "Inter-node Interconnect", Passed: passed, Detail: detail}
}

func (m *Matcher) checkIntranodeInterconnect(a models.Auction) CheckResult {
	if m.criteria.IntranodeInterconnect == "" {
		return CheckResult{Name: "Intra-node Interconnect", Passed: true, Detail: "no intra-node interconnect specified; skipping check"}
	}

	passed := strings.EqualFold(a.IntranodeInterconnect, m.criteria.IntranodeInterconnect)
	detail := fmt.Sprintf("intra-node interconnect '%s' matches expected", a.IntranodeInterconnect)
	if !passed {
		detail = fmt.Sprintf("expected intra-node interconnect '%s' but got '%s'",
			m.criteria.IntranodeInterconnect, a.IntranodeInterconnect)
	}
	return CheckResult{Name: "Intra-node Interconnect", Passed: passed, Detail: detail}
}

func (m *Matcher) checkFcpInstance(a models.Auction) CheckResult {
	if m.criteria.FcpInstance == "" {
		return CheckResult{Name: "FCP Instance", Passed: true, Detail: "no FCP instance specified; skipping check"}
	}

	// Instance identifiers are canonical, so this match is case-sensitive.
	passed := a.FcpInstance == m.criteria.FcpInstance
	detail := fmt.Sprintf("FCP instance '%s' matches the expected value", a.FcpInstance)
	if !passed {
		detail = fmt.Sprintf("expected FCP instance '%s' but got '%s'", m.criteria.FcpInstance, a.FcpInstance)
	}
	return CheckResult{Name: "FCP Instance", Passed: passed, Detail: detail}
}
