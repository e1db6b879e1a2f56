package engine

import (
	"fmt"

	"mercator-hq/ruler/pkg/rulebook"
)

// genericMissingCode is the base reason code for required fields whose
// metadata carries no more specific requirement flag.
const genericMissingCode = "missing_field"

// metadataReasonCodes maps field metadata flags to base reason codes.
// Declared as an ordered table (not a map) so the derivation is
// deterministic when a field carries several flags.
var metadataReasonCodes = []struct {
	Flag string
	Code string
}{
	{"receipt_required", "missing_receipt_images"},
	{"approval_required", "missing_pre_approval"},
	{"invoice_required", "missing_invoice_number"},
	{"project_required", "missing_project_code"},
	{"route_required", "missing_route_info"},
	{"destination_required", "missing_destination"},
	{"purpose_required", "missing_purpose"},
	{"payment_required", "missing_payment_details"},
	{"nights_required", "missing_nights_count"},
	{"people_required", "missing_people_count"},
}

// missingField records one required-but-empty field: the qualified reason
// code plus the presentation resolved for it.
type missingField struct {
	Code        string // field-qualified reason code ("baseCode:fieldKey")
	Key         string // raw field key
	DisplayName string
	Context     string
}

// checkRequiredFields walks the rule's field specs and flags required
// fields whose submitted value is empty. Pure function of rule and input;
// unresolvable metadata silently falls back to the generic code.
func (e *Evaluator) checkRequiredFields(rule *rulebook.Rule, given map[string]any) ([]Check, []missingField) {
	var checks []Check
	var missing []missingField

	for _, field := range rule.Fields {
		if field == nil || !field.Required {
			continue
		}
		if !isEmptyValue(given[field.Key]) {
			checks = append(checks, pass())
			continue
		}

		base := e.missingFieldCode(field)
		qualified := fmt.Sprintf("%s:%s", base, field.Key)

		checks = append(checks, fail(qualified))
		missing = append(missing, missingField{
			Code:        qualified,
			Key:         field.Key,
			DisplayName: field.DisplayName("en"),
			Context:     whyRequired(field.Key, e.config),
		})
	}

	return checks, missing
}

// missingFieldCode derives the base reason code for a missing field from
// its metadata flags. Flags whose code the taxonomy does not know are
// skipped so diagnostics stay meaningful.
func (e *Evaluator) missingFieldCode(field *rulebook.FieldSpec) string {
	for _, mapping := range metadataReasonCodes {
		if field.HasFlag(mapping.Flag) && e.taxonomy.Has(mapping.Code) {
			return mapping.Code
		}
	}
	return genericMissingCode
}

// whyRequired returns the fixed "why is this needed" sentence for a field
// key. Unrecognized keys get a generic sentence.
func whyRequired(key string, cfg *Config) string {
	switch key {
	case "receipt_images", "receipt_image":
		return fmt.Sprintf("Receipts are required for all expenses above %.0f JPY.", cfg.DefaultThreshold)
	case "pre_approval_id", "pre_approval":
		return "Pre-approval is required for expenses above 5000 JPY."
	case "invoice_registration_number", "invoice_number":
		return "Invoice numbers are required for tracking and compliance."
	case "project_code", "project":
		return "Project codes are required to ensure proper cost allocation."
	case "route", "route_info":
		return "Route information is required for travel expense validation."
	case "destination":
		return "Destination is required for travel expense validation."
	case "purpose":
		return "Business purpose is required for expense validation."
	case "payment_details", "payment_method":
		return "Payment details are required for expense tracking and reconciliation."
	case "num_nights", "nights_count":
		return "Number of nights is required for accommodation expense validation."
	case "num_people", "num_guests", "people_count":
		return "Number of people is required for expense validation."
	case "hotel_name":
		return "Hotel name is required for proper expense tracking and validation."
	case "check_in_date", "check_in":
		return "Check-in date is required to validate the accommodation period."
	case "check_out_date", "check_out":
		return "Check-out date is required to validate the accommodation period."
	case "hotel_location", "location":
		return "Hotel location is required for business trip validation and expense categorization."
	case "room_type":
		return "Room type helps categorize the accommodation expense properly."
	case "confirmation_number", "booking_reference":
		return "Booking confirmation number is required for expense verification."
	case "exchange_rate":
		return "Exchange rate is required for overseas expense conversion."
	case "approver", "approver_name":
		return "Approver is required for expenses above 10000 JPY."
	case "tax_information", "tax_details":
		return fmt.Sprintf("Tax details are required for expenses above %.0f JPY.", cfg.DefaultThreshold)
	default:
		return "This field is required for proper expense validation and processing."
	}
}
