package bid

import (
	"fmt"

	"github.com/filswan/go-swan-lib/logs"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// SubmitParams selects between single-bid and partial-fulfillment modes.
// Single mode takes either a prebuilt Payload or the raw fields; partial
// mode requires the raw fields plus AllowPartialFulfillment and a chunk
// size.
type SubmitParams struct {
	Payload          *models.BidPayload
	ClusterId        string
	InstanceQuantity int
	InstanceTypeId   string
	LimitPriceCents  int
	OrderName        string
	SshKeyId         string
	UserId           string
	StartupScript    string
	DiskAttachments  []models.DiskAttachment

	AllowPartialFulfillment bool
	ChunkSize               int
	ScriptCustomizer        ScriptCustomizer

	// IdempotencyKey is reused across retries of one logical single-bid
	// submission. Left empty, a fresh key is generated per attempt.
	IdempotencyKey string
}

// Manager is the public bid-submission surface, composing the payload
// builder, submitter and chunked engine.
type Manager struct {
	client    Client
	builder   *PayloadBuilder
	submitter *Submitter
}

func NewManager(client Client) *Manager {
	builder := NewPayloadBuilder()
	return &Manager{
		client:    client,
		builder:   builder,
		submitter: NewSubmitter(client),
	}
}

func (m *Manager) PrepareBidPayload(params BuildParams) (models.BidPayload, error) {
	return m.builder.Build(params)
}

// SubmitBid places one order, or several when partial fulfillment is
// requested. Missing parameters for the chosen mode are a configuration
// error raised before any remote call.
func (m *Manager) SubmitBid(projectId string, params SubmitParams) ([]models.BidResponse, error) {
	if params.Payload != nil {
		logs.GetLogger().Infof("submitting single bid with prebuilt payload, order_name: %s", params.Payload.OrderName)
		resp, err := m.submitter.Submit(*params.Payload, params.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		return []models.BidResponse{resp}, nil
	}

	if !params.AllowPartialFulfillment {
		if err := requireSingleBidParams(params); err != nil {
			return nil, err
		}
		payload, err := m.builder.Build(BuildParams{
			ClusterId:        params.ClusterId,
			InstanceQuantity: params.InstanceQuantity,
			InstanceTypeId:   params.InstanceTypeId,
			LimitPriceCents:  params.LimitPriceCents,
			OrderName:        params.OrderName,
			ProjectId:        projectId,
			SshKeyId:         params.SshKeyId,
			UserId:           params.UserId,
			StartupScript:    params.StartupScript,
			DiskAttachments:  params.DiskAttachments,
		})
		if err != nil {
			return nil, err
		}
		resp, err := m.submitter.Submit(payload, params.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		return []models.BidResponse{resp}, nil
	}

	engine := NewChunkedEngine(m.builder, m.submitter, params.ScriptCustomizer)
	return engine.SubmitChunks(projectId, PartialBidParams{
		ClusterId:        params.ClusterId,
		InstanceQuantity: params.InstanceQuantity,
		InstanceTypeId:   params.InstanceTypeId,
		LimitPriceCents:  params.LimitPriceCents,
		OrderName:        params.OrderName,
		SshKeyId:         params.SshKeyId,
		UserId:           params.UserId,
		StartupScript:    params.StartupScript,
		DiskAttachments:  params.DiskAttachments,
		ChunkSize:        params.ChunkSize,
	})
}

func (m *Manager) GetBids(projectId string) ([]models.Bid, error) {
	logs.GetLogger().Debugf("retrieving bids for project %s", projectId)
	return m.client.GetBids(projectId)
}

func (m *Manager) CancelBid(projectId, bidId string) error {
	logs.GetLogger().Infof("canceling bid %s in project %s", bidId, projectId)
	return m.client.CancelBid(projectId, bidId)
}

func requireSingleBidParams(params SubmitParams) error {
	if params.ClusterId == "" || params.InstanceQuantity == 0 || params.InstanceTypeId == "" ||
		params.LimitPriceCents == 0 || params.OrderName == "" || params.SshKeyId == "" || params.UserId == "" {
		return fmt.Errorf("missing required parameters for single-bid submission")
	}
	return nil
}
