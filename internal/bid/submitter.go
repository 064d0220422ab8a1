package bid

import (
	"fmt"

	"github.com/filswan/go-swan-lib/logs"

	"github.com/foundrytechnologies/flow-sdk/models"
)

// Client is the narrow marketplace capability the bid engine depends on,
// so the engine can be tested against a fake without a network stack.
type Client interface {
	PlaceBid(payload models.BidPayload, idempotencyKey string) (models.BidResponse, error)
	GetBids(projectId string) ([]models.Bid, error)
	CancelBid(projectId, bidId string) error
}

// SubmissionError wraps any remote failure from placing a bid, so callers
// can tell bid-logic failures from transport failures. The original cause
// stays reachable through errors.Unwrap.
type SubmissionError struct {
	OrderName string
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("bid submission failed for order %s: %v", e.OrderName, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Submitter sends one payload through the marketplace client. The
// idempotency key for a logical submission belongs to the caller: pass
// the same key across retries of one attempt, or leave it empty to have
// the client generate a fresh one.
type Submitter struct {
	client Client
}

func NewSubmitter(client Client) *Submitter {
	return &Submitter{client: client}
}

func (s *Submitter) Submit(payload models.BidPayload, idempotencyKey string) (models.BidResponse, error) {
	logs.GetLogger().Debugf("submitting bid with order name %s", payload.OrderName)
	resp, err := s.client.PlaceBid(payload, idempotencyKey)
	if err != nil {
		logs.GetLogger().Errorf("failed submit bid %s, error: %v", payload.OrderName, err)
		return models.BidResponse{}, &SubmissionError{OrderName: payload.OrderName, Err: err}
	}
	logs.GetLogger().Infof("bid submitted successfully, bid_id: %s", resp.Id)
	return resp, nil
}
