package bid

import (
	"fmt"
	"strings"

	"github.com/filswan/go-swan-lib/logs"
	"github.com/google/uuid"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// ScriptCustomizer lets a caller vary provisioning material per chunk
// (e.g. injecting the chunk index) without touching pricing or matching.
type ScriptCustomizer func(chunkIndex int, baseScript string) string

// PartialBidParams configures a chunked submission. The engine treats it
// as read-only.
type PartialBidParams struct {
	ClusterId        string
	InstanceQuantity int
	InstanceTypeId   string
	LimitPriceCents  int
	OrderName        string
	SshKeyId         string
	UserId           string
	StartupScript    string
	DiskAttachments  []models.DiskAttachment
	ChunkSize        int
}

func (p *PartialBidParams) Validate() error {
	for name, value := range map[string]string{
		"cluster_id":       p.ClusterId,
		"instance_type_id": p.InstanceTypeId,
		"order_name":       p.OrderName,
		"ssh_key_id":       p.SshKeyId,
		"user_id":          p.UserId,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("partial bid field %s cannot be empty", name)
		}
	}
	if p.InstanceQuantity <= 0 {
		return fmt.Errorf("instance_quantity must be greater than 0, got: %d", p.InstanceQuantity)
	}
	if p.LimitPriceCents <= 0 {
		return fmt.Errorf("limit_price_cents must be greater than 0, got: %d", p.LimitPriceCents)
	}
	if p.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be greater than 0, got: %d", p.ChunkSize)
	}
	return nil
}

// ChunkedEngine splits one large request into bounded-size orders and
// submits them strictly in sequence. Each chunk is an independent order;
// a chunk failure aborts the remaining chunks and surfaces the
// submission error.
type ChunkedEngine struct {
	builder    *PayloadBuilder
	submitter  *Submitter
	customizer ScriptCustomizer
}

func NewChunkedEngine(builder *PayloadBuilder, submitter *Submitter, customizer ScriptCustomizer) *ChunkedEngine {
	return &ChunkedEngine{builder: builder, submitter: submitter, customizer: customizer}
}

func (e *ChunkedEngine) SubmitChunks(projectId string, params PartialBidParams) ([]models.BidResponse, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// The submission id only correlates log lines; it is not sent remotely.
	submissionId := strings.ReplaceAll(uuid.NewString(), "-", "")
	logs.GetLogger().Infof("starting partial bid submission %s: total: %d, chunk_size: %d, order_name: %s",
		submissionId, params.InstanceQuantity, params.ChunkSize, params.OrderName)

	var submitted []models.BidResponse
	remaining := params.InstanceQuantity
	chunkIndex := 1

	for remaining > 0 {
		currentChunk := params.ChunkSize
		if remaining < currentChunk {
			currentChunk = remaining
		}
		chunkOrderName := fmt.Sprintf("%s-chunk%d", params.OrderName, chunkIndex)

		chunkScript := params.StartupScript
		if e.customizer != nil {
			chunkScript = e.customizer(chunkIndex, params.StartupScript)
		}

		payload, err := e.builder.Build(BuildParams{
			ClusterId:        params.ClusterId,
			InstanceQuantity: currentChunk,
			InstanceTypeId:   params.InstanceTypeId,
			LimitPriceCents:  params.LimitPriceCents,
			OrderName:        chunkOrderName,
			ProjectId:        projectId,
			SshKeyId:         params.SshKeyId,
			UserId:           params.UserId,
			StartupScript:    chunkScript,
			DiskAttachments:  params.DiskAttachments,
		})
		if err != nil {
			return submitted, err
		}

		logs.GetLogger().Infof("submitting chunk #%d: %d instances, order_name: %s (submission %s)",
			chunkIndex, currentChunk, chunkOrderName, submissionId)
		resp, err := e.submitter.Submit(payload, "")
		if err != nil {
			return submitted, err
		}
		submitted = append(submitted, resp)
		remaining -= currentChunk
		chunkIndex++
	}

	logs.GetLogger().Infof("partial bid submission %s complete, total chunks: %d", submissionId, len(submitted))
	return submitted, nil
}
