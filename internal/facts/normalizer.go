// Package facts maps loosely typed wizard answers onto the fixed case-facts shape
// consumed by document generation.
package facts

import (
	"github.com/landlorddesk/api/internal/domain"
)

const (
	// countryEnglandWales is the combined value the wizard emits for England & Wales.
	// Document generation only understands the split jurisdictions.
	countryEnglandWales = "england-wales"
	countryEngland      = "england"

	// tenancyTypeUnknown marks tenancies the wizard never classified.
	tenancyTypeUnknown = "unknown"
)

// fieldRule binds one destination field to the ordered source keys that may supply it.
// The first key present in the input wins, even when its value is null or oddly typed.
type fieldRule struct {
	target  func(*domain.CaseFacts) *any
	sources []string
}

// Normalize transforms wizard answers into case facts. It is total over its input:
// any map, including an empty one, yields a fully populated record. Values pass
// through without coercion, so downstream consumers see exactly what the wizard
// captured, wrong types included. The input is never mutated and each call returns
// a fresh record, so Normalize is safe to call concurrently.
func Normalize(input domain.WizardFacts) domain.CaseFacts {
	out := newCaseFacts()
	for _, rule := range scalarRules {
		if value, ok := resolve(input, rule.sources); ok {
			*rule.target(&out) = value
		}
	}
	out.Property.Country = normalizeCountry(out.Property.Country)
	if tenants := collectTenants(input); len(tenants) > 0 {
		out.Parties.Tenants = tenants
	}
	out.Meta = metaFacts(input)
	return out
}

// newCaseFacts returns the fully shaped output with every documented default applied.
// The defaults are spelled per field so the null / "unknown" / empty-list / false
// policy stays reviewable in one place; everything left untouched defaults to null.
func newCaseFacts() domain.CaseFacts {
	out := domain.CaseFacts{}
	out.Tenancy.TenancyType = tenancyTypeUnknown
	out.Parties.Tenants = []domain.TenantFacts{}
	out.Issues.RentArrears.ArrearsItems = []any{}
	out.Issues.ASB.Incidents = []any{}
	out.Evidence.TenancyAgreementUploaded = false
	out.Evidence.GasSafetyCertificateUploaded = false
	out.Evidence.EPCUploaded = false
	out.Evidence.HowToRentUploaded = false
	out.Evidence.DepositProtectionUploaded = false
	out.Evidence.RentScheduleUploaded = false
	out.Evidence.CorrespondenceUploaded = false
	return out
}

// resolve returns the value of the first source key present in the input. Presence
// alone decides the winner; a null value under a higher-priority key still shadows
// a populated lower-priority key.
func resolve(input domain.WizardFacts, sources []string) (any, bool) {
	for _, key := range sources {
		if value, ok := input[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// normalizeCountry folds the combined "england-wales" value into "england". Every
// other value, nulls and non-strings included, passes through untouched.
func normalizeCountry(value any) any {
	if s, ok := value.(string); ok && s == countryEnglandWales {
		return countryEngland
	}
	return value
}

// metaFacts copies the reserved __meta object field by field. Missing fields and a
// missing or malformed __meta object all default to null.
func metaFacts(input domain.WizardFacts) domain.CaseMetaFacts {
	meta := domain.CaseMetaFacts{}
	raw, ok := input[domain.WizardMetaKey].(map[string]any)
	if !ok {
		return meta
	}
	meta.Product = raw["product"]
	meta.OriginalProduct = raw["original_product"]
	meta.ProductTier = raw["product_tier"]
	return meta
}

// scalarRules is the declarative resolution table for every scalar destination.
// Ordering within a source list encodes precedence: underscore keys beat dot keys,
// full_name beats name, phone beats phone_number, property_country beats the
// generic jurisdiction key, and service_contact prefers its dot-path spelling.
var scalarRules = []fieldRule{
	{func(f *domain.CaseFacts) *any { return &f.Property.AddressLine1 }, []string{"property_address_line1", "property.address_line1"}},
	{func(f *domain.CaseFacts) *any { return &f.Property.AddressLine2 }, []string{"property_address_line2", "property.address_line2"}},
	{func(f *domain.CaseFacts) *any { return &f.Property.City }, []string{"property_city", "property.city"}},
	{func(f *domain.CaseFacts) *any { return &f.Property.Postcode }, []string{"property_postcode", "property.postcode"}},
	{func(f *domain.CaseFacts) *any { return &f.Property.Country }, []string{"property_country", "property.country", "jurisdiction"}},
	{func(f *domain.CaseFacts) *any { return &f.Property.IsHMO }, []string{"property_is_hmo", "property.is_hmo"}},

	{func(f *domain.CaseFacts) *any { return &f.Tenancy.TenancyType }, []string{"tenancy_type", "tenancy.tenancy_type"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.StartDate }, []string{"tenancy_start_date", "tenancy.start_date", "start_date"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.EndDate }, []string{"tenancy_end_date", "tenancy.end_date", "end_date"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.FixedTerm }, []string{"fixed_term", "tenancy.fixed_term"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.FixedTermMonths }, []string{"fixed_term_months", "tenancy.fixed_term_months"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.RentAmount }, []string{"rent_amount", "tenancy.rent_amount"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.RentFrequency }, []string{"rent_frequency", "tenancy.rent_frequency"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.RentDueDay }, []string{"rent_due_day", "tenancy.rent_due_day"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.DepositAmount }, []string{"deposit_amount", "tenancy.deposit_amount"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.DepositProtected }, []string{"deposit_protected", "tenancy.deposit_protected"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.DepositSchemeName }, []string{"deposit_scheme_name", "tenancy.deposit_scheme_name"}},
	{func(f *domain.CaseFacts) *any { return &f.Tenancy.DepositProtectionDate }, []string{"deposit_protection_date", "tenancy.deposit_protection_date"}},

	{func(f *domain.CaseFacts) *any { return &f.Parties.Landlord.Name }, []string{"landlord_full_name", "landlord_name", "landlord.full_name", "landlord.name"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Landlord.Email }, []string{"landlord_email", "landlord.email"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Landlord.Phone }, []string{"landlord_phone", "landlord_phone_number", "landlord.phone", "landlord.phone_number"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Landlord.AddressLine1 }, []string{"landlord_address_line1", "landlord.address_line1"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Landlord.AddressLine2 }, []string{"landlord_address_line2", "landlord.address_line2"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Landlord.City }, []string{"landlord_city", "landlord.city"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Landlord.Postcode }, []string{"landlord_postcode", "landlord.postcode"}},

	{func(f *domain.CaseFacts) *any { return &f.Parties.Agent.Name }, []string{"agent_name", "agent.name"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Agent.Email }, []string{"agent_email", "agent.email"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Agent.Phone }, []string{"agent_phone", "agent_phone_number", "agent.phone", "agent.phone_number"}},

	{func(f *domain.CaseFacts) *any { return &f.Parties.Solicitor.Name }, []string{"solicitor_name", "solicitor.name"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Solicitor.Email }, []string{"solicitor_email", "solicitor.email"}},
	{func(f *domain.CaseFacts) *any { return &f.Parties.Solicitor.Phone }, []string{"solicitor_phone", "solicitor_phone_number", "solicitor.phone", "solicitor.phone_number"}},

	{func(f *domain.CaseFacts) *any { return &f.Issues.RentArrears.HasArrears }, []string{"has_arrears", "issues.rent_arrears.has_arrears"}},
	{func(f *domain.CaseFacts) *any { return &f.Issues.RentArrears.TotalArrears }, []string{"total_arrears", "issues.rent_arrears.total_arrears"}},
	{func(f *domain.CaseFacts) *any { return &f.Issues.ASB.HasASB }, []string{"has_asb", "issues.asb.has_asb"}},
	{func(f *domain.CaseFacts) *any { return &f.Issues.ASB.Description }, []string{"asb_description", "issues.asb.description"}},
	{func(f *domain.CaseFacts) *any { return &f.Issues.OtherBreaches.HasBreaches }, []string{"has_breaches", "issues.other_breaches.has_breaches"}},
	{func(f *domain.CaseFacts) *any { return &f.Issues.OtherBreaches.Description }, []string{"breach_description", "issues.other_breaches.description"}},

	{func(f *domain.CaseFacts) *any { return &f.Notice.NoticeType }, []string{"notice_type", "notice.notice_type"}},
	{func(f *domain.CaseFacts) *any { return &f.Notice.NoticeDate }, []string{"notice_date", "notice.notice_date"}},
	{func(f *domain.CaseFacts) *any { return &f.Notice.ExpiryDate }, []string{"notice_expiry_date", "notice.expiry_date", "expiry_date"}},
	{func(f *domain.CaseFacts) *any { return &f.Notice.ServiceMethod }, []string{"service_method", "notice.service_method"}},
	{func(f *domain.CaseFacts) *any { return &f.Notice.ServedBy }, []string{"served_by", "notice.served_by"}},

	{func(f *domain.CaseFacts) *any { return &f.Court.Route }, []string{"court_route", "court.route"}},
	{func(f *domain.CaseFacts) *any { return &f.Court.ClaimAmountRent }, []string{"claim_amount_rent", "court.claim_amount_rent"}},
	{func(f *domain.CaseFacts) *any { return &f.Court.ClaimAmountCosts }, []string{"claim_amount_costs", "court.claim_amount_costs"}},
	{func(f *domain.CaseFacts) *any { return &f.Court.ClaimAmountOther }, []string{"claim_amount_other", "court.claim_amount_other"}},
	{func(f *domain.CaseFacts) *any { return &f.Court.TotalClaimAmount }, []string{"total_claim_amount", "court.total_claim_amount"}},
	{func(f *domain.CaseFacts) *any { return &f.Court.N5Required }, []string{"n5_required", "court.n5_required"}},
	{func(f *domain.CaseFacts) *any { return &f.Court.N119Required }, []string{"n119_required", "court.n119_required"}},
	{func(f *domain.CaseFacts) *any { return &f.Court.N1Required }, []string{"n1_required", "court.n1_required"}},

	{func(f *domain.CaseFacts) *any { return &f.Evidence.TenancyAgreementUploaded }, []string{"evidence.tenancy_agreement_uploaded"}},
	{func(f *domain.CaseFacts) *any { return &f.Evidence.GasSafetyCertificateUploaded }, []string{"evidence.gas_safety_certificate_uploaded"}},
	{func(f *domain.CaseFacts) *any { return &f.Evidence.EPCUploaded }, []string{"evidence.epc_uploaded"}},
	{func(f *domain.CaseFacts) *any { return &f.Evidence.HowToRentUploaded }, []string{"evidence.how_to_rent_uploaded"}},
	{func(f *domain.CaseFacts) *any { return &f.Evidence.DepositProtectionUploaded }, []string{"evidence.deposit_protection_uploaded"}},
	{func(f *domain.CaseFacts) *any { return &f.Evidence.RentScheduleUploaded }, []string{"evidence.rent_schedule_uploaded"}},
	{func(f *domain.CaseFacts) *any { return &f.Evidence.CorrespondenceUploaded }, []string{"evidence.correspondence_uploaded"}},

	{func(f *domain.CaseFacts) *any { return &f.ServiceContact.ServiceName }, []string{"service_contact.service_name", "service_name"}},
	{func(f *domain.CaseFacts) *any { return &f.ServiceContact.ServiceEmail }, []string{"service_contact.service_email", "service_email"}},
	{func(f *domain.CaseFacts) *any { return &f.ServiceContact.ServicePhone }, []string{"service_contact.service_phone", "service_phone"}},

	{func(f *domain.CaseFacts) *any { return &f.MoneyClaim.SolicitorCosts }, []string{"case_facts.money_claim.solicitor_costs"}},
}

// tenantRules resolves fields within one indexed tenant group. Keys here are the
// field segment after the tenants.<N>. prefix.
var tenantRules = []struct {
	target  func(*domain.TenantFacts) *any
	sources []string
}{
	{func(t *domain.TenantFacts) *any { return &t.Name }, []string{"full_name", "name"}},
	{func(t *domain.TenantFacts) *any { return &t.Email }, []string{"email"}},
	{func(t *domain.TenantFacts) *any { return &t.Phone }, []string{"phone", "phone_number"}},
	{func(t *domain.TenantFacts) *any { return &t.AddressLine1 }, []string{"address_line1"}},
	{func(t *domain.TenantFacts) *any { return &t.AddressLine2 }, []string{"address_line2"}},
	{func(t *domain.TenantFacts) *any { return &t.City }, []string{"city"}},
	{func(t *domain.TenantFacts) *any { return &t.Postcode }, []string{"postcode"}},
}

// collectTenants rebuilds the tenant list from tenants.<N>.<field> keys, ordered by
// ascending index with gaps collapsed.
func collectTenants(input domain.WizardFacts) []domain.TenantFacts {
	groups := collectIndexed(input, "tenants")
	tenants := make([]domain.TenantFacts, 0, len(groups))
	for _, group := range groups {
		tenant := domain.TenantFacts{}
		for _, rule := range tenantRules {
			for _, key := range rule.sources {
				if value, ok := group[key]; ok {
					*rule.target(&tenant) = value
					break
				}
			}
		}
		tenants = append(tenants, tenant)
	}
	return tenants
}
