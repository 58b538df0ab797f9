package service

import (
	"strings"

	"wedding_crm_backend/internal/leads/domain"
	"wedding_crm_backend/internal/leads/repository"
	"wedding_crm_backend/internal/leads/transport"
	"wedding_crm_backend/platform/phone"
	"wedding_crm_backend/platform/sanitize"
)

func toPipelineView(lead repository.Lead) transport.PipelineLeadView {
	budget := lead.BudgetMax
	if lead.Budget != nil {
		budget = *lead.Budget
	}

	view := transport.PipelineLeadView{
		ID:          lead.ID,
		Couple:      domain.Couple(lead.PartnerOneName, lead.PartnerTwoName),
		WeddingDate: lead.WeddingDate,
		Budget:      budget,
		Stage:       lead.Stage,
		DateInStage: lead.UpdatedAt,
		Archived:    lead.SaveStatus == domain.SaveStatusArchived,
	}
	if lead.AssigneeName != nil && *lead.AssigneeName != "" {
		view.Assignee = &transport.Assignee{Name: *lead.AssigneeName}
	}
	return view
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                 lead.ID,
		PartnerOneName:     lead.PartnerOneName,
		PartnerTwoName:     lead.PartnerTwoName,
		Email:              lead.Email,
		Phone:              lead.Phone,
		WeddingDate:        lead.WeddingDate,
		BudgetMin:          lead.BudgetMin,
		BudgetMax:          lead.BudgetMax,
		Budget:             lead.Budget,
		GuestCountMin:      lead.GuestCountMin,
		GuestCountMax:      lead.GuestCountMax,
		PreferredLocations: nonNil(lead.PreferredLocations),
		ServiceTypes:       nonNil(lead.ServiceTypes),
		Status:             lead.Status,
		Stage:              lead.Stage,
		SaveStatus:         lead.SaveStatus,
		CreatedBy:          lead.CreatedBy,
		CreatedAt:          lead.CreatedAt,
		UpdatedAt:          lead.UpdatedAt,
	}
}

func toPipelineResponse(lead repository.Lead) transport.PipelineLeadResponse {
	return transport.PipelineLeadResponse{
		LeadResponse: toLeadResponse(lead),
		View:         toPipelineView(lead),
	}
}

func toPatch(req transport.UpdatePipelineLeadRequest, stage *domain.Stage) repository.LeadPatch {
	patch := repository.LeadPatch{
		PartnerOneName:   sanitize.TextPtr(req.PartnerOneName),
		PartnerTwoName:   sanitize.TextPtr(req.PartnerTwoName),
		Phone:            phone.NormalizePtr(req.Phone),
		WeddingDate:      req.WeddingDate,
		ClearWeddingDate: req.ClearWeddingDate,
		BudgetMin:        req.BudgetMin,
		BudgetMax:        req.BudgetMax,
		Budget:           req.Budget,
		ClearBudget:      req.ClearBudget,
		GuestCountMin:    req.GuestCountMin,
		GuestCountMax:    req.GuestCountMax,
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		patch.Email = &email
	}
	if req.PreferredLocations != nil {
		locations := sanitize.Texts(*req.PreferredLocations)
		patch.PreferredLocations = &locations
	}
	if req.ServiceTypes != nil {
		types := sanitize.Texts(*req.ServiceTypes)
		patch.ServiceTypes = &types
	}
	if stage != nil {
		patch.Status = &stage.Status
		patch.Stage = &stage.Label
	}
	return patch
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
