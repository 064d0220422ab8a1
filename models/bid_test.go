package models

import (
	"testing"

	"github.com/foundrytechnologies/flow-sdk/constants"
)

func validBidPayload() BidPayload {
	return BidPayload{
		ClusterId:        "cluster-1",
		InstanceQuantity: 1,
		InstanceTypeId:   "it-1",
		LimitPriceCents:  1,
		OrderName:        "order-1",
		ProjectId:        "project-1",
		SshKeyIds:        []string{"key-1"},
		UserId:           "user-1",
	}
}

func TestBidPayloadValidate(t *testing.T) {
	payload := validBidPayload()
	if err := payload.Validate(); err != nil {
		t.Fatalf("minimal valid payload rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*BidPayload)
	}{
		{"zero limit price", func(p *BidPayload) { p.LimitPriceCents = 0 }},
		{"negative limit price", func(p *BidPayload) { p.LimitPriceCents = -1 }},
		{"zero quantity", func(p *BidPayload) { p.InstanceQuantity = 0 }},
		{"no ssh keys", func(p *BidPayload) { p.SshKeyIds = nil }},
		{"whitespace cluster id", func(p *BidPayload) { p.ClusterId = "  " }},
		{"empty order name", func(p *BidPayload) { p.OrderName = "" }},
		{"empty user id", func(p *BidPayload) { p.UserId = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validBidPayload()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("expected validation to reject %s", tc.name)
			}
		})
	}
}

func TestBidResponseValidate(t *testing.T) {
	resp := BidResponse{Id: "bid-1", ClusterId: "cluster-1", InstanceTypeId: "it-1"}
	if err := resp.Validate(); err != nil {
		t.Fatalf("complete response rejected: %v", err)
	}

	resp.ClusterId = ""
	if err := resp.Validate(); err == nil {
		t.Error("missing cluster id must be rejected")
	}

	// Duplicate responses carry placeholders and skip the field checks.
	resp = BidResponse{Status: constants.BidStatusDuplicate}
	if err := resp.Validate(); err != nil {
		t.Errorf("duplicate responses must validate as-is: %v", err)
	}
}

func TestDuplicateBidResponse(t *testing.T) {
	payload := validBidPayload()
	payload.InstanceQuantity = 5

	resp := DuplicateBidResponse("order-1", "project-1", "user-1", &payload)
	if resp.Status != constants.BidStatusDuplicate {
		t.Errorf("expected duplicate status, got %q", resp.Status)
	}
	if resp.Name != "order-1" || resp.ProjectId != "project-1" || resp.UserId != "user-1" {
		t.Errorf("request context not carried over: %+v", resp)
	}
	if resp.Id == "" {
		t.Error("synthesized response needs a generated id")
	}
	if resp.InstanceQuantity != 5 {
		t.Errorf("payload fields should refine the placeholders, got %+v", resp)
	}

	bare := DuplicateBidResponse("order-2", "project-1", "user-1", nil)
	if bare.ClusterId != constants.UnknownFieldPlaceholder {
		t.Errorf("unrecoverable fields default to the placeholder, got %q", bare.ClusterId)
	}
	if err := bare.Validate(); err != nil {
		t.Errorf("synthesized responses must pass validation: %v", err)
	}
}
