package services

import (
	"fmt"
	"strconv"

	domain "github.com/landlorddesk/api/internal/domain"
)

// Official form identifiers used by the render worker's template registry.
const (
	noticeFormSection8  = "form_3"
	noticeFormSection21 = "form_6a"
)

// Statutory grounds under Schedule 2 of the Housing Act 1988 that the wizard can
// establish from case facts. Descriptions follow the prescribed Form 3 wording.
var (
	groundSeriousArrears = domain.NoticeGround{
		Code: "8",
		Description: "At both the date of the service of the notice and at the date of the hearing " +
			"at least two months' rent is unpaid (where rent is payable monthly).",
	}
	groundSomeArrears = domain.NoticeGround{
		Code: "10",
		Description: "Some rent lawfully due from the tenant is unpaid on the date on which the " +
			"proceedings for possession are begun.",
	}
	groundPersistentDelay = domain.NoticeGround{
		Code: "11",
		Description: "Whether or not any rent is in arrears on the date on which proceedings for " +
			"possession are begun, the tenant has persistently delayed paying rent which has become lawfully due.",
	}
	groundBreachOfTenancy = domain.NoticeGround{
		Code: "12",
		Description: "Any obligation of the tenancy (other than one related to the payment of rent) " +
			"has been broken or not performed.",
	}
	groundNuisance = domain.NoticeGround{
		Code: "14",
		Description: "The tenant or a person residing in or visiting the dwelling-house has been guilty " +
			"of conduct causing or likely to cause a nuisance or annoyance.",
	}
)

// buildNoticePayload flattens case facts into the field set an official notice form
// needs. Facts are loosely typed, so every value is stringified best-effort; facts
// the wizard never captured come through as empty strings and are left for the
// landlord to complete. Document kinds without a notice form return nil.
func buildNoticePayload(kind domain.DocumentKind, caseFacts domain.CaseFacts) *domain.NoticePayload {
	switch kind {
	case domain.DocumentKindSection8:
		payload := baseNoticePayload(caseFacts)
		payload.Form = noticeFormSection8
		payload.Grounds = section8Grounds(caseFacts.Issues)
		payload.ArrearsTotal = factAmount(caseFacts.Issues.RentArrears.TotalArrears)
		return payload
	case domain.DocumentKindSection21:
		payload := baseNoticePayload(caseFacts)
		payload.Form = noticeFormSection21
		return payload
	default:
		return nil
	}
}

func baseNoticePayload(caseFacts domain.CaseFacts) *domain.NoticePayload {
	tenants := make([]string, 0, len(caseFacts.Parties.Tenants))
	for _, tenant := range caseFacts.Parties.Tenants {
		if name := factString(tenant.Name); name != "" {
			tenants = append(tenants, name)
		}
	}
	return &domain.NoticePayload{
		TenantNames:     tenants,
		PropertyAddress: addressLines(caseFacts.Property.AddressLine1, caseFacts.Property.AddressLine2, caseFacts.Property.City, caseFacts.Property.Postcode),
		LandlordName:    factString(caseFacts.Parties.Landlord.Name),
		LandlordAddress: addressLines(caseFacts.Parties.Landlord.AddressLine1, caseFacts.Parties.Landlord.AddressLine2, caseFacts.Parties.Landlord.City, caseFacts.Parties.Landlord.Postcode),
		LandlordPhone:   factString(caseFacts.Parties.Landlord.Phone),
		NoticeDate:      factString(caseFacts.Notice.NoticeDate),
		ExpiryDate:      factString(caseFacts.Notice.ExpiryDate),
		ServiceMethod:   factString(caseFacts.Notice.ServiceMethod),
		ServedBy:        factString(caseFacts.Notice.ServedBy),
	}
}

// section8Grounds selects the statutory grounds the captured issues support. Flags
// are loosely typed, so only an explicit boolean true establishes a ground.
func section8Grounds(issues domain.IssuesFacts) []domain.NoticeGround {
	grounds := make([]domain.NoticeGround, 0, 5)
	if factBool(issues.RentArrears.HasArrears) {
		grounds = append(grounds, groundSeriousArrears, groundSomeArrears, groundPersistentDelay)
	}
	if factBool(issues.ASB.HasASB) {
		grounds = append(grounds, groundNuisance)
	}
	if factBool(issues.OtherBreaches.HasBreaches) {
		grounds = append(grounds, groundBreachOfTenancy)
	}
	return grounds
}

// addressLines assembles the non-empty string parts of an address in display order.
func addressLines(parts ...any) []string {
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if line := factString(part); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// factBool reads a loosely typed fact as a boolean; anything but true is false.
func factBool(value any) bool {
	b, _ := value.(bool)
	return b
}

// factAmount renders a loosely typed monetary fact for display on a form.
func factAmount(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', 2, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
