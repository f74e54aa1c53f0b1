package facts

import (
	"reflect"
	"testing"

	"github.com/landlorddesk/api/internal/domain"
)

// defaultCaseFacts mirrors the documented defaults: null everywhere except the
// tenancy type, the empty lists, and the evidence flags.
func defaultCaseFacts() domain.CaseFacts {
	out := domain.CaseFacts{}
	out.Tenancy.TenancyType = "unknown"
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

func TestNormalizeEmptyInputYieldsFullyShapedDefaults(t *testing.T) {
	got := Normalize(domain.WizardFacts{})
	want := defaultCaseFacts()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize({}) = %+v, want %+v", got, want)
	}
	if got.Parties.Tenants == nil {
		t.Fatalf("expected empty tenant list, got nil")
	}
	if got.Issues.RentArrears.ArrearsItems == nil || got.Issues.ASB.Incidents == nil {
		t.Fatalf("expected empty issue lists, got nil")
	}
}

func TestNormalizeUnderscoreBeatsDot(t *testing.T) {
	input := domain.WizardFacts{
		"landlord_name":          "A",
		"landlord.name":          "B",
		"property_address_line1": "1 Flat St",
		"property.address_line1": "2 Other St",
	}
	got := Normalize(input)
	if got.Parties.Landlord.Name != "A" {
		t.Fatalf("landlord name = %v, want A", got.Parties.Landlord.Name)
	}
	if got.Property.AddressLine1 != "1 Flat St" {
		t.Fatalf("property address = %v, want 1 Flat St", got.Property.AddressLine1)
	}
}

func TestNormalizeCountry(t *testing.T) {
	cases := []struct {
		name  string
		input domain.WizardFacts
		want  any
	}{
		{"england-wales folds to england", domain.WizardFacts{"property_country": "england-wales"}, "england"},
		{"jurisdiction fallback", domain.WizardFacts{"jurisdiction": "scotland"}, "scotland"},
		{"property_country wins over jurisdiction", domain.WizardFacts{"property_country": "northern-ireland", "jurisdiction": "scotland"}, "northern-ireland"},
		{"jurisdiction england-wales also folds", domain.WizardFacts{"jurisdiction": "england-wales"}, "england"},
		{"non-string passes through", domain.WizardFacts{"property_country": true}, true},
		{"explicit null shadows fallback", domain.WizardFacts{"property_country": nil, "jurisdiction": "scotland"}, nil},
		{"absent stays null", domain.WizardFacts{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.input)
			if got.Property.Country != tc.want {
				t.Fatalf("country = %v, want %v", got.Property.Country, tc.want)
			}
		})
	}
}

func TestNormalizeTenantOrderingAndGaps(t *testing.T) {
	input := domain.WizardFacts{
		"tenants.2.full_name": "Carol",
		"tenants.0.full_name": "Alice",
		"tenants.x.full_name": "ignored",
		"tenants.-1.email":    "ignored@example.com",
	}
	got := Normalize(input)
	if len(got.Parties.Tenants) != 2 {
		t.Fatalf("tenant count = %d, want 2", len(got.Parties.Tenants))
	}
	if got.Parties.Tenants[0].Name != "Alice" || got.Parties.Tenants[1].Name != "Carol" {
		t.Fatalf("tenant order = [%v %v], want [Alice Carol]", got.Parties.Tenants[0].Name, got.Parties.Tenants[1].Name)
	}
}

func TestNormalizeTenantFieldPrecedence(t *testing.T) {
	input := domain.WizardFacts{
		"tenants.0.full_name":    "Alice Johnson",
		"tenants.0.name":         "Alice",
		"tenants.0.phone":        "07700 900000",
		"tenants.0.phone_number": "020 7946 0000",
	}
	got := Normalize(input)
	if len(got.Parties.Tenants) != 1 {
		t.Fatalf("tenant count = %d, want 1", len(got.Parties.Tenants))
	}
	tenant := got.Parties.Tenants[0]
	if tenant.Name != "Alice Johnson" {
		t.Fatalf("tenant name = %v, want Alice Johnson", tenant.Name)
	}
	if tenant.Phone != "07700 900000" {
		t.Fatalf("tenant phone = %v, want 07700 900000", tenant.Phone)
	}
}

func TestNormalizeTypePassthrough(t *testing.T) {
	input := domain.WizardFacts{
		"rent_amount":           "not a number",
		"deposit_protected":     12.5,
		"evidence.epc_uploaded": nil,
	}
	got := Normalize(input)
	if got.Tenancy.RentAmount != "not a number" {
		t.Fatalf("rent amount = %v, want the raw string back", got.Tenancy.RentAmount)
	}
	if got.Tenancy.DepositProtected != 12.5 {
		t.Fatalf("deposit protected = %v, want 12.5 untouched", got.Tenancy.DepositProtected)
	}
	if got.Evidence.EPCUploaded != nil {
		t.Fatalf("epc flag = %v, want explicit null to shadow the false default", got.Evidence.EPCUploaded)
	}
}

func TestNormalizeIsPureAndRepeatable(t *testing.T) {
	input := domain.WizardFacts{
		"landlord_name":       "John Smith",
		"tenants.0.full_name": "Alice Johnson",
		"rent_amount":         1500,
	}
	snapshot := make(domain.WizardFacts, len(input))
	for k, v := range input {
		snapshot[k] = v
	}
	first := Normalize(input)
	second := Normalize(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls diverged: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(input, snapshot) {
		t.Fatalf("input mutated: %+v", input)
	}
}

func TestNormalizeServiceContactPrefersDotPath(t *testing.T) {
	input := domain.WizardFacts{
		"service_contact.service_name": "Desk Legal",
		"service_name":                 "Fallback Ltd",
		"service_email":                "serve@example.com",
	}
	got := Normalize(input)
	if got.ServiceContact.ServiceName != "Desk Legal" {
		t.Fatalf("service name = %v, want Desk Legal", got.ServiceContact.ServiceName)
	}
	if got.ServiceContact.ServiceEmail != "serve@example.com" {
		t.Fatalf("service email = %v, want flat fallback", got.ServiceContact.ServiceEmail)
	}
}

func TestNormalizeMoneyClaimReadsDeepKey(t *testing.T) {
	input := domain.WizardFacts{"case_facts.money_claim.solicitor_costs": 99.5}
	got := Normalize(input)
	if got.MoneyClaim.SolicitorCosts != 99.5 {
		t.Fatalf("solicitor costs = %v, want 99.5", got.MoneyClaim.SolicitorCosts)
	}
	if Normalize(domain.WizardFacts{"solicitor_costs": 10}).MoneyClaim.SolicitorCosts != nil {
		t.Fatalf("flat solicitor_costs key must not be recognized")
	}
}

func TestNormalizeMeta(t *testing.T) {
	input := domain.WizardFacts{
		domain.WizardMetaKey: map[string]any{
			"product":      "eviction_pack",
			"product_tier": "premium",
		},
	}
	got := Normalize(input)
	if got.Meta.Product != "eviction_pack" {
		t.Fatalf("meta product = %v, want eviction_pack", got.Meta.Product)
	}
	if got.Meta.OriginalProduct != nil {
		t.Fatalf("meta original product = %v, want null", got.Meta.OriginalProduct)
	}
	if got.Meta.ProductTier != "premium" {
		t.Fatalf("meta tier = %v, want premium", got.Meta.ProductTier)
	}

	malformed := Normalize(domain.WizardFacts{domain.WizardMetaKey: "oops"})
	if malformed.Meta.Product != nil || malformed.Meta.ProductTier != nil {
		t.Fatalf("malformed __meta should default to nulls, got %+v", malformed.Meta)
	}
}

func TestNormalizeEndToEndScenario(t *testing.T) {
	input := domain.WizardFacts{
		"landlord_name":       "John Smith",
		"tenants.0.full_name": "Alice Johnson",
		"rent_amount":         1500,
		"property_country":    "england-wales",
	}
	got := Normalize(input)

	want := defaultCaseFacts()
	want.Parties.Landlord.Name = "John Smith"
	want.Parties.Tenants = []domain.TenantFacts{{Name: "Alice Johnson"}}
	want.Tenancy.RentAmount = 1500
	want.Property.Country = "england"
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("end-to-end mismatch:\n got %+v\nwant %+v", got, want)
	}
}
