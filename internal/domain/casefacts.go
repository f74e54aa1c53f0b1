package domain

// WizardFacts is the loosely typed bag of answers collected by the onboarding wizard.
// Values arrive exactly as decoded from JSON (strings, numbers, booleans, nulls, or the
// reserved "__meta" object) and keys mix three naming conventions: underscore-joined
// flat keys (landlord_name), dot-joined path keys (landlord.name), and indexed list
// keys (tenants.0.full_name).
type WizardFacts map[string]any

// WizardMetaKey is the reserved wizard key carrying product metadata.
const WizardMetaKey = "__meta"

// CaseFacts is the fixed-shape record produced from wizard answers and consumed by
// document generation. Every field is always present; scalar fields hold whatever
// value the wizard supplied without coercion, so they stay loosely typed.
type CaseFacts struct {
	Property       PropertyFacts       `json:"property"`
	Tenancy        TenancyFacts        `json:"tenancy"`
	Parties        PartiesFacts        `json:"parties"`
	Issues         IssuesFacts         `json:"issues"`
	Notice         NoticeFacts         `json:"notice"`
	Court          CourtFacts          `json:"court"`
	Evidence       EvidenceFacts       `json:"evidence"`
	ServiceContact ServiceContactFacts `json:"service_contact"`
	MoneyClaim     MoneyClaimFacts     `json:"money_claim"`
	Meta           CaseMetaFacts       `json:"meta"`
}

// PropertyFacts describes the rental property under dispute.
type PropertyFacts struct {
	AddressLine1 any `json:"address_line1"`
	AddressLine2 any `json:"address_line2"`
	City         any `json:"city"`
	Postcode     any `json:"postcode"`
	Country      any `json:"country"`
	IsHMO        any `json:"is_hmo"`
}

// TenancyFacts captures the tenancy agreement details.
type TenancyFacts struct {
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

// PartiesFacts groups the people involved in the case.
type PartiesFacts struct {
	Landlord  LandlordFacts `json:"landlord"`
	Tenants   []TenantFacts `json:"tenants"`
	Agent     ContactFacts  `json:"agent"`
	Solicitor ContactFacts  `json:"solicitor"`
}

// LandlordFacts identifies the landlord and their correspondence address.
type LandlordFacts struct {
	Name         any `json:"name"`
	Email        any `json:"email"`
	Phone        any `json:"phone"`
	AddressLine1 any `json:"address_line1"`
	AddressLine2 any `json:"address_line2"`
	City         any `json:"city"`
	Postcode     any `json:"postcode"`
}

// TenantFacts identifies a single tenant. Tenants are ordered by their wizard index.
type TenantFacts struct {
	Name         any `json:"name"`
	Email        any `json:"email"`
	Phone        any `json:"phone"`
	AddressLine1 any `json:"address_line1"`
	AddressLine2 any `json:"address_line2"`
	City         any `json:"city"`
	Postcode     any `json:"postcode"`
}

// ContactFacts is the minimal contact shape shared by agents and solicitors.
type ContactFacts struct {
	Name  any `json:"name"`
	Email any `json:"email"`
	Phone any `json:"phone"`
}

// IssuesFacts collects the grounds the landlord may rely on.
type IssuesFacts struct {
	RentArrears   RentArrearsFacts   `json:"rent_arrears"`
	ASB           ASBFacts           `json:"asb"`
	OtherBreaches OtherBreachesFacts `json:"other_breaches"`
}

// RentArrearsFacts records arrears state. Items are populated downstream, never here.
type RentArrearsFacts struct {
	HasArrears   any   `json:"has_arrears"`
	TotalArrears any   `json:"total_arrears"`
	ArrearsItems []any `json:"arrears_items"`
}

// ASBFacts records anti-social behaviour complaints. Incidents are populated downstream.
type ASBFacts struct {
	HasASB      any   `json:"has_asb"`
	Description any   `json:"description"`
	Incidents   []any `json:"incidents"`
}

// OtherBreachesFacts records tenancy breaches outside arrears and ASB.
type OtherBreachesFacts struct {
	HasBreaches any `json:"has_breaches"`
	Description any `json:"description"`
}

// NoticeFacts captures how and when a notice was (or will be) served.
type NoticeFacts struct {
	NoticeType    any `json:"notice_type"`
	NoticeDate    any `json:"notice_date"`
	ExpiryDate    any `json:"expiry_date"`
	ServiceMethod any `json:"service_method"`
	ServedBy      any `json:"served_by"`
}

// CourtFacts captures the intended court route and claim amounts.
type CourtFacts struct {
	Route            any `json:"route"`
	ClaimAmountRent  any `json:"claim_amount_rent"`
	ClaimAmountCosts any `json:"claim_amount_costs"`
	ClaimAmountOther any `json:"claim_amount_other"`
	TotalClaimAmount any `json:"total_claim_amount"`
	N5Required       any `json:"n5_required"`
	N119Required     any `json:"n119_required"`
	N1Required       any `json:"n1_required"`
}

// EvidenceFacts tracks which supporting documents the landlord has uploaded.
// Flags default to false rather than null so downstream checks stay simple.
type EvidenceFacts struct {
	TenancyAgreementUploaded     any `json:"tenancy_agreement_uploaded"`
	GasSafetyCertificateUploaded any `json:"gas_safety_certificate_uploaded"`
	EPCUploaded                  any `json:"epc_uploaded"`
	HowToRentUploaded            any `json:"how_to_rent_uploaded"`
	DepositProtectionUploaded    any `json:"deposit_protection_uploaded"`
	RentScheduleUploaded         any `json:"rent_schedule_uploaded"`
	CorrespondenceUploaded       any `json:"correspondence_uploaded"`
}

// ServiceContactFacts is the contact used on served documents.
type ServiceContactFacts struct {
	ServiceName  any `json:"service_name"`
	ServiceEmail any `json:"service_email"`
	ServicePhone any `json:"service_phone"`
}

// MoneyClaimFacts carries money-claim specific figures.
type MoneyClaimFacts struct {
	SolicitorCosts any `json:"solicitor_costs"`
}

// CaseMetaFacts mirrors the wizard's reserved __meta object.
type CaseMetaFacts struct {
	Product         any `json:"product"`
	OriginalProduct any `json:"original_product"`
	ProductTier     any `json:"product_tier"`
}
