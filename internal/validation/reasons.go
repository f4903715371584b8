package validation

// Rejection reason codes, in the order the stages emit them.
const (
	ReasonRoutedToCertification = "routed_to_certification"
	ReasonRoutedToEducation     = "routed_to_education"

	ReasonEmptyContent        = "empty_content"
	ReasonPlaceholderContent  = "placeholder_content"
	ReasonRepeatedCharacters  = "repeated_characters"
	ReasonTitleOrgDuplicate   = "title_org_duplicate"
	ReasonLowLexicalDiversity = "low_lexical_diversity"

	ReasonOrgIsDate            = "org_is_date"
	ReasonOrgIsContact         = "org_is_contact"
	ReasonOrgIsSectionHeader   = "org_is_section_header"
	ReasonOrgIsEducation       = "org_is_education"
	ReasonOrgIsUnlistedAcronym = "org_is_unlisted_acronym"

	ReasonTitleIsNumericOrDate   = "title_is_numeric_or_date"
	ReasonTitleIsMonthYear       = "title_is_month_year"
	ReasonTitleIsEducation       = "title_is_education"
	ReasonTitleIsUnlistedAcronym = "title_is_unlisted_acronym"
	ReasonTitleTooShortNoRole    = "title_too_short_no_role"

	ReasonInsufficientContext = "insufficient_context"
	ReasonDateInverted        = "date_inverted"
	ReasonBelowThreshold      = "below_threshold"

	ReasonFallbackMissingDates     = "fallback_missing_dates"
	ReasonFallbackMissingRoleOrOrg = "fallback_missing_role_or_org"
)

// hardReasons always zero the confidence.
var hardReasons = map[string]bool{
	ReasonEmptyContent:           true,
	ReasonPlaceholderContent:     true,
	ReasonRepeatedCharacters:     true,
	ReasonTitleOrgDuplicate:      true,
	ReasonLowLexicalDiversity:    true,
	ReasonTitleIsNumericOrDate:   true,
	ReasonTitleIsMonthYear:       true,
	ReasonTitleIsUnlistedAcronym: true,
	ReasonDateInverted:           true,
}

// IsHard reports whether a reason code is a hard rejection.
func IsHard(reason string) bool {
	return hardReasons[reason]
}

// AllReasons lists every code the validators can emit, for reporting.
var AllReasons = []string{
	ReasonRoutedToCertification, ReasonRoutedToEducation,
	ReasonEmptyContent, ReasonPlaceholderContent, ReasonRepeatedCharacters,
	ReasonTitleOrgDuplicate, ReasonLowLexicalDiversity,
	ReasonOrgIsDate, ReasonOrgIsContact, ReasonOrgIsSectionHeader,
	ReasonOrgIsEducation, ReasonOrgIsUnlistedAcronym,
	ReasonTitleIsNumericOrDate, ReasonTitleIsMonthYear, ReasonTitleIsEducation,
	ReasonTitleIsUnlistedAcronym, ReasonTitleTooShortNoRole,
	ReasonInsufficientContext, ReasonDateInverted, ReasonBelowThreshold,
	ReasonFallbackMissingDates, ReasonFallbackMissingRoleOrOrg,
}
