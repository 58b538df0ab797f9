// Package service ranks vendors against a lead's budget.
package service

import (
	"context"
	"slices"
	"strings"

	"wedding_crm_backend/internal/vendors/repository"
	"wedding_crm_backend/internal/vendors/scoring"
	"wedding_crm_backend/internal/vendors/transport"
	"wedding_crm_backend/platform/apperr"
	"wedding_crm_backend/platform/config"
	"wedding_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

const defaultRowCap = 200

// VendorReader is the storage the matcher depends on.
type VendorReader interface {
	ListActiveByBudgetOverlap(ctx context.Context, q repository.OverlapQuery) ([]repository.Vendor, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Vendor, error)
	ListTeamMembers(ctx context.Context, vendorID uuid.UUID) ([]repository.TeamMember, error)
	GetLeadBudget(ctx context.Context, leadID uuid.UUID) (repository.LeadBudget, error)
}

// Service provides vendor matching.
type Service struct {
	repo    VendorReader
	rowCap  int
	metrics *metrics.Metrics
}

// New creates a new vendors service.
func New(repo VendorReader, cfg config.MatcherConfig, m *metrics.Metrics) *Service {
	rowCap := defaultRowCap
	if cfg != nil && cfg.GetVendorMatchRowCap() > 0 {
		rowCap = cfg.GetVendorMatchRowCap()
	}
	return &Service{repo: repo, rowCap: rowCap, metrics: m}
}

// FindMatchingVendors returns active vendors overlapping [leadMin, leadMax],
// best score first. Equal scores keep the repository's order. Repository
// errors are returned as they are so an empty result always means no match.
func (s *Service) FindMatchingVendors(ctx context.Context, leadMin, leadMax int64, serviceType *string) ([]transport.VendorMatch, error) {
	if leadMin < 0 || leadMax < 0 {
		return nil, apperr.Validation("budget must not be negative")
	}
	if leadMin > leadMax {
		return nil, apperr.Validation("budget minimum exceeds maximum")
	}

	candidates, err := s.repo.ListActiveByBudgetOverlap(ctx, repository.OverlapQuery{
		Min:         leadMin,
		Max:         leadMax,
		ServiceType: serviceType,
		Limit:       s.rowCap,
	})
	if err != nil {
		return nil, err
	}

	lead := scoring.BudgetRange{Min: leadMin, Max: leadMax}
	matches := make([]transport.VendorMatch, len(candidates))
	for i, v := range candidates {
		matches[i] = toVendorMatch(v, scoring.Score(lead, scoring.BudgetRange{Min: v.MinimumAmount, Max: v.MaximumAmount}))
	}

	slices.SortStableFunc(matches, func(a, b transport.VendorMatch) int {
		return b.MatchScore - a.MatchScore
	})

	s.metrics.ObserveVendorMatch(len(matches))
	return matches, nil
}

// MatchForLead ranks vendors against a stored lead. A budget override
// collapses the range to that single amount. Unless serviceType is given or
// anyService is set, the lead's first service tag filters the candidates.
func (s *Service) MatchForLead(ctx context.Context, leadID uuid.UUID, serviceType *string, anyService bool) (transport.MatchVendorsResponse, error) {
	budget, err := s.repo.GetLeadBudget(ctx, leadID)
	if err != nil {
		return transport.MatchVendorsResponse{}, err
	}

	budgetRange := LeadRange(budget.BudgetMin, budget.BudgetMax, budget.Budget)
	filter := serviceType
	if filter == nil && !anyService && len(budget.ServiceTypes) > 0 {
		first := budget.ServiceTypes[0]
		filter = &first
	}

	items, err := s.FindMatchingVendors(ctx, budgetRange.Min, budgetRange.Max, filter)
	if err != nil {
		return transport.MatchVendorsResponse{}, err
	}
	return transport.MatchVendorsResponse{BudgetMin: budgetRange.Min, BudgetMax: budgetRange.Max, Items: items}, nil
}

// GetVendor returns a vendor with its team.
func (s *Service) GetVendor(ctx context.Context, id uuid.UUID) (transport.VendorResponse, error) {
	vendor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.VendorResponse{}, err
	}
	members, err := s.repo.ListTeamMembers(ctx, id)
	if err != nil {
		return transport.VendorResponse{}, err
	}

	team := make([]transport.TeamMemberResponse, len(members))
	for i, m := range members {
		team[i] = transport.TeamMemberResponse{ID: m.ID, Name: m.Name, Email: m.Email}
	}

	return transport.VendorResponse{
		ID:            vendor.ID,
		Name:          vendor.Name,
		Email:         vendor.Email,
		ContactNo:     vendor.ContactNo,
		ServiceTypes:  SplitServiceTypes(vendor.ServiceTypes),
		MinimumAmount: vendor.MinimumAmount,
		MaximumAmount: vendor.MaximumAmount,
		IsActive:      vendor.IsActive,
		TeamMembers:   team,
	}, nil
}

// LeadRange is the range a lead is matched on.
func LeadRange(budgetMin, budgetMax int64, override *int64) scoring.BudgetRange {
	if override != nil {
		return scoring.Point(*override)
	}
	return scoring.BudgetRange{Min: budgetMin, Max: budgetMax}
}

// SplitServiceTypes turns the stored comma list into trimmed tags.
func SplitServiceTypes(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func toVendorMatch(v repository.Vendor, score int) transport.VendorMatch {
	return transport.VendorMatch{
		ID:            v.ID,
		Name:          v.Name,
		Email:         v.Email,
		ContactNo:     v.ContactNo,
		ServiceTypes:  SplitServiceTypes(v.ServiceTypes),
		MinimumAmount: v.MinimumAmount,
		MaximumAmount: v.MaximumAmount,
		MatchScore:    score,
	}
}
