package models

import (
	"time"

	"github.com/google/uuid"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusArchived  CampaignStatus = "archived"
)

type Campaign struct {
	Id             uuid.UUID
	OrganizationId uuid.UUID
	Name           string
	Status         CampaignStatus
	Budget         float64
	StartDate      *time.Time
	EndDate        *time.Time
	Metrics        CampaignMetrics
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CampaignMetrics is the trailing-window performance snapshot used by the
// condition evaluator and the budget calculator. Roi is revenue over spend,
// PreviousRoi the same ratio one window earlier, SpendVelocity spend per day.
type CampaignMetrics struct {
	Spend          float64
	Revenue        float64
	Impressions    int64
	Clicks         int64
	Conversions    int64
	Roi            float64
	PreviousRoi    float64
	Roas           float64
	Ctr            float64
	ConversionRate float64
	SpendVelocity  float64
}

// MetricsSnapshot flattens a campaign into the map shape consumed by the
// condition evaluator.
func (c Campaign) MetricsSnapshot() map[string]any {
	return map[string]any{
		"budget":          c.Budget,
		"status":          string(c.Status),
		"spend":           c.Metrics.Spend,
		"revenue":         c.Metrics.Revenue,
		"impressions":     c.Metrics.Impressions,
		"clicks":          c.Metrics.Clicks,
		"conversions":     c.Metrics.Conversions,
		"roi":             c.Metrics.Roi,
		"previous_roi":    c.Metrics.PreviousRoi,
		"roas":            c.Metrics.Roas,
		"ctr":             c.Metrics.Ctr,
		"conversion_rate": c.Metrics.ConversionRate,
		"spend_velocity":  c.Metrics.SpendVelocity,
	}
}
