package bid

import (
	"fmt"

	"github.com/filswan/go-swan-lib/logs"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// BuildParams are the raw inputs for one purchase order.
type BuildParams struct {
	ClusterId        string
	InstanceQuantity int
	InstanceTypeId   string
	LimitPriceCents  int
	OrderName        string
	ProjectId        string
	SshKeyId         string
	UserId           string
	StartupScript    string
	DiskAttachments  []models.DiskAttachment
}

// PayloadBuilder assembles and validates BidPayload values. Validation
// failure rejects construction; a partially-valid payload never escapes.
type PayloadBuilder struct{}

func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{}
}

func (b *PayloadBuilder) Build(params BuildParams) (models.BidPayload, error) {
	logs.GetLogger().Debugf("building bid payload for order %s", params.OrderName)

	var bidDisks []models.BidDiskAttachment
	for _, disk := range params.DiskAttachments {
		bidDisk, err := models.BidDiskAttachmentFrom(disk)
		if err != nil {
			return models.BidPayload{}, fmt.Errorf("failed convert disk attachment, error: %w", err)
		}
		bidDisks = append(bidDisks, bidDisk)
	}

	payload := models.BidPayload{
		ClusterId:        params.ClusterId,
		InstanceQuantity: params.InstanceQuantity,
		InstanceTypeId:   params.InstanceTypeId,
		LimitPriceCents:  params.LimitPriceCents,
		OrderName:        params.OrderName,
		ProjectId:        params.ProjectId,
		SshKeyIds:        []string{params.SshKeyId},
		StartupScript:    params.StartupScript,
		UserId:           params.UserId,
		DiskAttachments:  bidDisks,
	}
	if err := payload.Validate(); err != nil {
		logs.GetLogger().Errorf("failed build bid payload, error: %v", err)
		return models.BidPayload{}, err
	}
	return payload, nil
}
