package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

// PlatformRepository is the boundary to the external ad-platform adapters.
// Every call returns either nil, an error wrapping ErrPlatformCallRetryable
// (timeouts, 5xx), or an error wrapping ErrPlatformCallFailed (4xx, bad
// request): the caller retries only the former.
type PlatformRepository interface {
	PauseCampaign(ctx context.Context, campaignId uuid.UUID) error
	ResumeCampaign(ctx context.Context, campaignId uuid.UUID) error
	UpdateCampaignBudget(ctx context.Context, campaignId uuid.UUID, newBudget float64) error
}

const platformCallTimeout = 10 * time.Second

type PlatformRepositoryHTTP struct {
	baseUrl string
	client  *http.Client
}

func NewPlatformRepositoryHTTP(baseUrl string) *PlatformRepositoryHTTP {
	return &PlatformRepositoryHTTP{
		baseUrl: baseUrl,
		client:  &http.Client{Timeout: platformCallTimeout},
	}
}

func (repo *PlatformRepositoryHTTP) PauseCampaign(ctx context.Context, campaignId uuid.UUID) error {
	return repo.post(ctx, fmt.Sprintf("/campaigns/%s/pause", campaignId), nil)
}

func (repo *PlatformRepositoryHTTP) ResumeCampaign(ctx context.Context, campaignId uuid.UUID) error {
	return repo.post(ctx, fmt.Sprintf("/campaigns/%s/resume", campaignId), nil)
}

func (repo *PlatformRepositoryHTTP) UpdateCampaignBudget(
	ctx context.Context,
	campaignId uuid.UUID,
	newBudget float64,
) error {
	return repo.post(ctx, fmt.Sprintf("/campaigns/%s/budget", campaignId), map[string]any{
		"budget": newBudget,
	})
}

func (repo *PlatformRepositoryHTTP) post(ctx context.Context, path string, body map[string]any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return errors.Wrap(err, "unable to encode platform request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, repo.baseUrl+path, &payload)
	if err != nil {
		return errors.Wrap(err, "unable to build platform request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := repo.client.Do(req)
	if err != nil {
		// Network failures and timeouts are worth retrying.
		return errors.Wrapf(models.ErrPlatformCallRetryable, "platform call %s: %v", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return errors.Wrapf(models.ErrPlatformCallRetryable,
			"platform call %s returned status %d", path, resp.StatusCode)
	default:
		return errors.Wrapf(models.ErrPlatformCallFailed,
			"platform call %s returned status %d", path, resp.StatusCode)
	}
}
