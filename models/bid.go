package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/foundrytechnologies/flow-sdk/constants"
)

// BidPayload is a purchase-order request. Build one through
// bid.PayloadBuilder (or call Validate directly) so that an invalid
// payload never leaves construction.
type BidPayload struct {
	ClusterId        string              `json:"cluster_id"`
	InstanceQuantity int                 `json:"instance_quantity"`
	InstanceTypeId   string              `json:"instance_type_id"`
	LimitPriceCents  int                 `json:"limit_price_cents"`
	OrderName        string              `json:"order_name"`
	ProjectId        string              `json:"project_id"`
	SshKeyIds        []string            `json:"ssh_key_ids"`
	StartupScript    string              `json:"startup_script,omitempty"`
	UserId           string              `json:"user_id"`
	DiskAttachments  []BidDiskAttachment `json:"disk_attachments,omitempty"`
}

func (p *BidPayload) Validate() error {
	requiredStrings := map[string]string{
		"cluster_id":       p.ClusterId,
		"instance_type_id": p.InstanceTypeId,
		"order_name":       p.OrderName,
		"project_id":       p.ProjectId,
		"user_id":          p.UserId,
	}
	for name, value := range requiredStrings {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("bid payload field %s cannot be empty or whitespace", name)
		}
	}
	if p.InstanceQuantity <= 0 {
		return fmt.Errorf("instance_quantity must be greater than 0, got: %d", p.InstanceQuantity)
	}
	if p.LimitPriceCents <= 0 {
		return fmt.Errorf("limit_price_cents must be greater than 0, got: %d", p.LimitPriceCents)
	}
	if len(p.SshKeyIds) == 0 {
		return fmt.Errorf("at least one ssh_key_id is required")
	}
	return nil
}

// Bid is the server's record of an order as returned by bid listings.
type Bid struct {
	Id               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	Status           string   `json:"status,omitempty"`
	CreatedAt        string   `json:"created_at,omitempty"`
	DeactivatedAt    string   `json:"deactivated_at,omitempty"`
	LimitPriceCents  int      `json:"limit_price_cents,omitempty"`
	InstanceQuantity int      `json:"instance_quantity,omitempty"`
	InstanceTypeId   string   `json:"instance_type_id,omitempty"`
	ClusterId        string   `json:"cluster_id,omitempty"`
	ProjectId        string   `json:"project_id,omitempty"`
	SshKeyIds        []string `json:"ssh_key_ids,omitempty"`
	UserId           string   `json:"user_id,omitempty"`
	DiskIds          []string `json:"disk_ids,omitempty"`
}

// BidResponse is what the server sends back after a successful place_bid.
// When Status is the duplicate marker the resource fields may be absent
// and default to their zero values instead of failing validation.
type BidResponse struct {
	Id               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	Status           string   `json:"status,omitempty"`
	ClusterId        string   `json:"cluster_id,omitempty"`
	InstanceQuantity int      `json:"instance_quantity,omitempty"`
	InstanceTypeId   string   `json:"instance_type_id,omitempty"`
	LimitPriceCents  int      `json:"limit_price_cents,omitempty"`
	ProjectId        string   `json:"project_id,omitempty"`
	UserId           string   `json:"user_id,omitempty"`
	DiskIds          []string `json:"disk_ids,omitempty"`
	CreatedAt        string   `json:"created_at,omitempty"`
	DeactivatedAt    string   `json:"deactivated_at,omitempty"`
}

func (r *BidResponse) Validate() error {
	if r.Status == constants.BidStatusDuplicate {
		// Synthesized duplicate responses carry placeholder resource fields.
		return nil
	}
	for name, value := range map[string]string{
		"id":               r.Id,
		"cluster_id":       r.ClusterId,
		"instance_type_id": r.InstanceTypeId,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("bid response field %s cannot be empty or whitespace", name)
		}
	}
	return nil
}

// DuplicateBidResponse builds the stand-in response returned when the
// marketplace reports that an order with the same name already exists.
// Fields the client cannot recover default to placeholders.
func DuplicateBidResponse(orderName, projectId, userId string, payload *BidPayload) BidResponse {
	resp := BidResponse{
		Id:               uuid.NewString(),
		Name:             orderName,
		Status:           constants.BidStatusDuplicate,
		ClusterId:        constants.UnknownFieldPlaceholder,
		InstanceQuantity: 1,
		InstanceTypeId:   constants.UnknownFieldPlaceholder,
		ProjectId:        projectId,
		UserId:           userId,
		DiskIds:          []string{},
	}
	if payload != nil {
		if payload.ClusterId != "" {
			resp.ClusterId = payload.ClusterId
		}
		if payload.InstanceQuantity > 0 {
			resp.InstanceQuantity = payload.InstanceQuantity
		}
		if payload.InstanceTypeId != "" {
			resp.InstanceTypeId = payload.InstanceTypeId
		}
		resp.LimitPriceCents = payload.LimitPriceCents
	}
	return resp
}
