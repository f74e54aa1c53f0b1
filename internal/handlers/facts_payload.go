package handlers

import (
	domain "github.com/landlorddesk/api/internal/domain"
)

// caseFactsPayload mirrors domain.CaseFacts with the wire field names wizard
// clients and the render worker expect. Scalar values stay loosely typed.
type caseFactsPayload struct {
	Property       propertyFactsPayload       `json:"property"`
	Tenancy        tenancyFactsPayload        `json:"tenancy"`
	Parties        partiesFactsPayload        `json:"parties"`
	Issues         issuesFactsPayload         `json:"issues"`
	Notice         noticeFactsPayload         `json:"notice"`
	Court          courtFactsPayload          `json:"court"`
	Evidence       evidenceFactsPayload       `json:"evidence"`
	ServiceContact serviceContactFactsPayload `json:"service_contact"`
	MoneyClaim     moneyClaimFactsPayload     `json:"money_claim"`
	Meta           caseMetaFactsPayload       `json:"meta"`
}

type propertyFactsPayload struct {
	AddressLine1 any `json:"address_line1"`
	AddressLine2 any `json:"address_line2"`
	City         any `json:"city"`
	Postcode     any `json:"postcode"`
	Country      any `json:"country"`
	IsHMO        any `json:"is_hmo"`
}

type tenancyFactsPayload struct {
	TenancyType           any `json:"tenancy_type"`
	StartDate             any `json:"start_date"`
	EndDate               any `json:"end_date"`
	FixedTerm             any `json:"fixed_term"`
	FixedTermMonths       any `json:"fixed_term_months"`
	RentAmount            any `json:"rent_amount"`
	RentFrequency         any `json:"rent_frequency"`
	RentDueDay            any `json:"rent_due_day"`
	DepositAmount         any `json:"deposit_amount"`
	DepositProtected      any `json:"deposit_protected"`
	DepositSchemeName     any `json:"deposit_scheme_name"`
	DepositProtectionDate any `json:"deposit_protection_date"`
}

type partiesFactsPayload struct {
	Landlord  landlordFactsPayload  `json:"landlord"`
	Tenants   []tenantFactsPayload  `json:"tenants"`
	Agent     contactFactsPayload   `json:"agent"`
	Solicitor contactFactsPayload   `json:"solicitor"`
}

type landlordFactsPayload struct {
	Name         any `json:"name"`
	Email        any `json:"email"`
	Phone        any `json:"phone"`
	AddressLine1 any `json:"address_line1"`
	AddressLine2 any `json:"address_line2"`
	City         any `json:"city"`
	Postcode     any `json:"postcode"`
}

type tenantFactsPayload struct {
	Name         any `json:"name"`
	Email        any `json:"email"`
	Phone        any `json:"phone"`
	AddressLine1 any `json:"address_line1"`
	AddressLine2 any `json:"address_line2"`
	City         any `json:"city"`
	Postcode     any `json:"postcode"`
}

type contactFactsPayload struct {
	Name  any `json:"name"`
	Email any `json:"email"`
	Phone any `json:"phone"`
}

type issuesFactsPayload struct {
	RentArrears   rentArrearsFactsPayload   `json:"rent_arrears"`
	ASB           asbFactsPayload           `json:"asb"`
	OtherBreaches otherBreachesFactsPayload `json:"other_breaches"`
}

type rentArrearsFactsPayload struct {
	HasArrears   any   `json:"has_arrears"`
	TotalArrears any   `json:"total_arrears"`
	ArrearsItems []any `json:"arrears_items"`
}

type asbFactsPayload struct {
	HasASB      any   `json:"has_asb"`
	Description any   `json:"description"`
	Incidents   []any `json:"incidents"`
}

type otherBreachesFactsPayload struct {
	HasBreaches any `json:"has_breaches"`
	Description any `json:"description"`
}

type noticeFactsPayload struct {
	NoticeType    any `json:"notice_type"`
	NoticeDate    any `json:"notice_date"`
	ExpiryDate    any `json:"expiry_date"`
	ServiceMethod any `json:"service_method"`
	ServedBy      any `json:"served_by"`
}

type courtFactsPayload struct {
	Route            any `json:"route"`
	ClaimAmountRent  any `json:"claim_amount_rent"`
	ClaimAmountCosts any `json:"claim_amount_costs"`
	ClaimAmountOther any `json:"claim_amount_other"`
	TotalClaimAmount any `json:"total_claim_amount"`
	N5Required       any `json:"n5_required"`
	N119Required     any `json:"n119_required"`
	N1Required       any `json:"n1_required"`
}

type evidenceFactsPayload struct {
	TenancyAgreementUploaded     any `json:"tenancy_agreement_uploaded"`
	GasSafetyCertificateUploaded any `json:"gas_safety_certificate_uploaded"`
	EPCUploaded                  any `json:"epc_uploaded"`
	HowToRentUploaded            any `json:"how_to_rent_uploaded"`
	DepositProtectionUploaded    any `json:"deposit_protection_uploaded"`
	RentScheduleUploaded         any `json:"rent_schedule_uploaded"`
	CorrespondenceUploaded       any `json:"correspondence_uploaded"`
}

type serviceContactFactsPayload struct {
	ServiceName  any `json:"service_name"`
	ServiceEmail any `json:"service_email"`
	ServicePhone any `json:"service_phone"`
}

type moneyClaimFactsPayload struct {
	SolicitorCosts any `json:"solicitor_costs"`
}

type caseMetaFactsPayload struct {
	Product         any `json:"product"`
	OriginalProduct any `json:"original_product"`
	ProductTier     any `json:"product_tier"`
}

func buildCaseFactsPayload(facts domain.CaseFacts) caseFactsPayload {
	tenants := make([]tenantFactsPayload, 0, len(facts.Parties.Tenants))
	for _, tenant := range facts.Parties.Tenants {
		tenants = append(tenants, tenantFactsPayload{
			Name:         tenant.Name,
			Email:        tenant.Email,
			Phone:        tenant.Phone,
			AddressLine1: tenant.AddressLine1,
			AddressLine2: tenant.AddressLine2,
			City:         tenant.City,
			Postcode:     tenant.Postcode,
		})
	}

	arrearsItems := facts.Issues.RentArrears.ArrearsItems
	if arrearsItems == nil {
		arrearsItems = []any{}
	}
	incidents := facts.Issues.ASB.Incidents
	if incidents == nil {
		incidents = []any{}
	}

	return caseFactsPayload{
		Property: propertyFactsPayload{
			AddressLine1: facts.Property.AddressLine1,
			AddressLine2: facts.Property.AddressLine2,
			City:         facts.Property.City,
			Postcode:     facts.Property.Postcode,
			Country:      facts.Property.Country,
			IsHMO:        facts.Property.IsHMO,
		},
		Tenancy: tenancyFactsPayload{
			TenancyType:           facts.Tenancy.TenancyType,
			StartDate:             facts.Tenancy.StartDate,
			EndDate:               facts.Tenancy.EndDate,
			FixedTerm:             facts.Tenancy.FixedTerm,
			FixedTermMonths:       facts.Tenancy.FixedTermMonths,
			RentAmount:            facts.Tenancy.RentAmount,
			RentFrequency:         facts.Tenancy.RentFrequency,
			RentDueDay:            facts.Tenancy.RentDueDay,
			DepositAmount:         facts.Tenancy.DepositAmount,
			DepositProtected:      facts.Tenancy.DepositProtected,
			DepositSchemeName:     facts.Tenancy.DepositSchemeName,
			DepositProtectionDate: facts.Tenancy.DepositProtectionDate,
		},
		Parties: partiesFactsPayload{
			Landlord: landlordFactsPayload{
				Name:         facts.Parties.Landlord.Name,
				Email:        facts.Parties.Landlord.Email,
				Phone:        facts.Parties.Landlord.Phone,
				AddressLine1: facts.Parties.Landlord.AddressLine1,
				AddressLine2: facts.Parties.Landlord.AddressLine2,
				City:         facts.Parties.Landlord.City,
				Postcode:     facts.Parties.Landlord.Postcode,
			},
			Tenants: tenants,
			Agent: contactFactsPayload{
				Name:  facts.Parties.Agent.Name,
				Email: facts.Parties.Agent.Email,
				Phone: facts.Parties.Agent.Phone,
			},
			Solicitor: contactFactsPayload{
				Name:  facts.Parties.Solicitor.Name,
				Email: facts.Parties.Solicitor.Email,
				Phone: facts.Parties.Solicitor.Phone,
			},
		},
		Issues: issuesFactsPayload{
			RentArrears: rentArrearsFactsPayload{
				HasArrears:   facts.Issues.RentArrears.HasArrears,
				TotalArrears: facts.Issues.RentArrears.TotalArrears,
				ArrearsItems: arrearsItems,
			},
			ASB: asbFactsPayload{
				HasASB:      facts.Issues.ASB.HasASB,
				Description: facts.Issues.ASB.Description,
				Incidents:   incidents,
			},
			OtherBreaches: otherBreachesFactsPayload{
				HasBreaches: facts.Issues.OtherBreaches.HasBreaches,
				Description: facts.Issues.OtherBreaches.Description,
			},
		},
		Notice: noticeFactsPayload{
			NoticeType:    facts.Notice.NoticeType,
			NoticeDate:    facts.Notice.NoticeDate,
			ExpiryDate:    facts.Notice.ExpiryDate,
			ServiceMethod: facts.Notice.ServiceMethod,
			ServedBy:      facts.Notice.ServedBy,
		},
		Court: courtFactsPayload{
			Route:            facts.Court.Route,
			ClaimAmountRent:  facts.Court.ClaimAmountRent,
			ClaimAmountCosts: facts.Court.ClaimAmountCosts,
			ClaimAmountOther: facts.Court.ClaimAmountOther,
			TotalClaimAmount: facts.Court.TotalClaimAmount,
			N5Required:       facts.Court.N5Required,
			N119Required:     facts.Court.N119Required,
			N1Required:       facts.Court.N1Required,
		},
		Evidence: evidenceFactsPayload{
			TenancyAgreementUploaded:     facts.Evidence.TenancyAgreementUploaded,
			GasSafetyCertificateUploaded: facts.Evidence.GasSafetyCertificateUploaded,
			EPCUploaded:                  facts.Evidence.EPCUploaded,
			HowToRentUploaded:            facts.Evidence.HowToRentUploaded,
			DepositProtectionUploaded:    facts.Evidence.DepositProtectionUploaded,
			RentScheduleUploaded:         facts.Evidence.RentScheduleUploaded,
			CorrespondenceUploaded:       facts.Evidence.CorrespondenceUploaded,
		},
		ServiceContact: serviceContactFactsPayload{
			ServiceName:  facts.ServiceContact.ServiceName,
			ServiceEmail: facts.ServiceContact.ServiceEmail,
			ServicePhone: facts.ServiceContact.ServicePhone,
		},
		MoneyClaim: moneyClaimFactsPayload{
			SolicitorCosts: facts.MoneyClaim.SolicitorCosts,
		},
		Meta: caseMetaFactsPayload{
			Product:         facts.Meta.Product,
			OriginalProduct: facts.Meta.OriginalProduct,
			ProductTier:     facts.Meta.ProductTier,
		},
	}
}
