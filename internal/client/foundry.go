package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/filswan/go-swan-lib/logs"
	"github.com/google/uuid"

	"github.com/foundrytechnologies/flow-sdk/conf"
	"github.com/foundrytechnologies/flow-sdk/constants"
	"github.com/foundrytechnologies/flow-sdk/models"
)

// FoundryClient talks to the spot marketplace API: identity lookups,
// auctions, bids and regions. Construction authenticates and resolves
// the current user so later calls can fill user-scoped paths.
type FoundryClient struct {
	http   *HTTPClient
	userId string
}

func NewFoundryClient(cfg *conf.FlowConfig) (*FoundryClient, error) {
	authenticator, err := NewAuthenticator(cfg.API.BaseUrl, cfg.AUTH.Email, cfg.AUTH.Password, cfg.AUTH.ApiKey,
		cfg.API.Timeout, cfg.API.MaxRetries)
	if err != nil {
		return nil, err
	}
	token, err := authenticator.GetAccessToken()
	if err != nil {
		return nil, err
	}

	fc := &FoundryClient{
		http: NewHTTPClient(cfg.API.BaseUrl, token, cfg.API.Timeout, cfg.API.MaxRetries),
	}
	user, err := fc.GetUser()
	if err != nil {
		return nil, err
	}
	fc.userId = user.Id
	logs.GetLogger().Debugf("foundry client initialized for user_id: %s", fc.userId)
	return fc, nil
}

// NewFoundryClientWithTransport wires a prebuilt transport; used by tests.
func NewFoundryClientWithTransport(http *HTTPClient, userId string) *FoundryClient {
	return &FoundryClient{http: http, userId: userId}
}

func (fc *FoundryClient) UserId() string {
	return fc.userId
}

func (fc *FoundryClient) GetUser() (models.User, error) {
	data, err := fc.http.Request("GET", "/users/", nil, nil)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := ParseJSON(data, &user, "user data"); err != nil {
		return models.User{}, err
	}
	if user.Id == "" {
		return models.User{}, &APIError{Body: "user id not found in user info"}
	}
	return user, nil
}

func (fc *FoundryClient) GetProjects() ([]models.Project, error) {
	path := fmt.Sprintf("/users/%s/projects", fc.userId)
	data, err := fc.http.Request("GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	var projects []models.Project
	if err := ParseJSON(data, &projects, "projects data"); err != nil {
		return nil, err
	}
	return projects, nil
}

func (fc *FoundryClient) GetSshKeys(projectId string) ([]models.SshKey, error) {
	path := fmt.Sprintf("/projects/%s/ssh_keys", projectId)
	data, err := fc.http.Request("GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	var keys []models.SshKey
	if err := ParseJSON(data, &keys, "ssh keys data"); err != nil {
		return nil, err
	}
	return keys, nil
}

func (fc *FoundryClient) GetAuctions(projectId string) ([]models.Auction, error) {
	path := fmt.Sprintf("/projects/%s/spot-auctions/auctions", projectId)
	data, err := fc.http.Request("GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	var auctions []models.Auction
	if err := ParseJSON(data, &auctions, "auctions data"); err != nil {
		return nil, err
	}
	logs.GetLogger().Debugf("fetched %d auctions for project %s", len(auctions), projectId)
	return auctions, nil
}

func (fc *FoundryClient) GetBids(projectId string) ([]models.Bid, error) {
	path := fmt.Sprintf("/projects/%s/spot-auctions/bids", projectId)
	data, err := fc.http.Request("GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	var bids []models.Bid
	if err := ParseJSON(data, &bids, "bids data"); err != nil {
		return nil, err
	}
	return bids, nil
}

// PlaceBid submits one order. Every attempt carries an idempotency key;
// pass the same key when retrying a logical submission so the server can
// recognize duplicates. When the server reports that the order already
// exists the call returns a synthesized duplicate response instead of an
// error, so at-least-once retries look exactly-once to the caller.
func (fc *FoundryClient) PlaceBid(payload models.BidPayload, idempotencyKey string) (models.BidResponse, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	headers := map[string]string{constants.IdempotencyKeyHeader: idempotencyKey}
	path := fmt.Sprintf("/projects/%s/spot-auctions/bids", payload.ProjectId)

	data, err := fc.http.Request("POST", path, payload, headers)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isDuplicateOrder(apiErr.StatusCode, apiErr.Body) {
			logs.GetLogger().Infof("duplicate bid detected for order %s; treating as success", payload.OrderName)
			return models.DuplicateBidResponse(payload.OrderName, payload.ProjectId, fc.userId, &payload), nil
		}
		return models.BidResponse{}, err
	}

	var resp models.BidResponse
	if err := ParseJSON(data, &resp, "place_bid response"); err != nil {
		return models.BidResponse{}, err
	}
	if err := resp.Validate(); err != nil {
		return models.BidResponse{}, &APIError{Body: fmt.Sprintf("invalid place_bid response: %v", err)}
	}
	return resp, nil
}

// isDuplicateOrder is the single place that knows the marketplace signals
// a duplicate order with a 400 whose body mentions the existing order.
// The coupling to the server's error wording is deliberate and isolated
// here so it can be swapped when the API grows a structured error code.
func isDuplicateOrder(statusCode int, body string) bool {
	if statusCode != 400 {
		return false
	}
	lower := strings.ToLower(body)
	return strings.Contains(lower, "order named") && strings.Contains(lower, "already exists")
}

// CancelBid removes an order. A bid the server no longer knows about
// counts as already cancelled, not as a failure.
func (fc *FoundryClient) CancelBid(projectId, bidId string) error {
	path := fmt.Sprintf("/projects/%s/spot-auctions/bids/%s", projectId, bidId)
	_, err := fc.http.Request("DELETE", path, nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Body), "bid not found") {
			logs.GetLogger().Infof("bid %s not found during cancellation; treating as already canceled", bidId)
			return nil
		}
		return err
	}
	return nil
}

func (fc *FoundryClient) GetInstances(projectId string) (map[string][]models.Instance, error) {
	path := fmt.Sprintf("/projects/%s/all_instances", projectId)
	data, err := fc.http.Request("GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	var instances map[string][]models.Instance
	if err := ParseJSON(data, &instances, "instances data"); err != nil {
		return nil, err
	}
	return instances, nil
}

func (fc *FoundryClient) GetRegions() ([]models.Region, error) {
	data, err := fc.http.Request("GET", "/marketplace/v1/regions", nil, nil)
	if err != nil {
		return nil, err
	}
	var regions []models.Region
	if err := ParseJSON(data, &regions, "regions data"); err != nil {
		return nil, err
	}
	return regions, nil
}

func (fc *FoundryClient) GetRegionIdByName(name string) (string, error) {
	regions, err := fc.GetRegions()
	if err != nil {
		return "", err
	}
	for _, region := range regions {
		if strings.EqualFold(region.Name, name) {
			return region.RegionId, nil
		}
	}
	return "", fmt.Errorf("region not found: %s", name)
}
