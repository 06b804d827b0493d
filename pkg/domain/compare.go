package domain

// CompareMode selects how a condition item value is compared to the base value.
type CompareMode string

const (
	CompareModeEqual              CompareMode = "equal"
	CompareModeNotEqual           CompareMode = "not_equal"
	CompareModeGreaterThan        CompareMode = "greater_than"
	CompareModeGreaterThanOrEqual CompareMode = "greater_than_or_equal"
	CompareModeLessThan           CompareMode = "less_than"
	CompareModeLessThanOrEqual    CompareMode = "less_than_or_equal"
	CompareModeContains           CompareMode = "contains"
	CompareModeStartsWith         CompareMode = "starts_with"
	CompareModeEndsWith           CompareMode = "ends_with"

	// Reserved for user conditions. Known to the editor but not evaluated here.
	CompareModeHasRole          CompareMode = "has_role"
	CompareModeNotHasRole       CompareMode = "not_has_role"
	CompareModeHasPermission    CompareMode = "has_permission"
	CompareModeNotHasPermission CompareMode = "not_has_permission"
)

// IsReserved reports whether m is a known mode without an evaluator.
func (m CompareMode) IsReserved() bool {
	switch m {
	case CompareModeHasRole, CompareModeNotHasRole, CompareModeHasPermission, CompareModeNotHasPermission:
		return true
	}
	return false
}

// IsImplemented reports whether m can be evaluated.
func (m CompareMode) IsImplemented() bool {
	switch m {
	case CompareModeEqual, CompareModeNotEqual,
		CompareModeGreaterThan, CompareModeGreaterThanOrEqual,
		CompareModeLessThan, CompareModeLessThanOrEqual,
		CompareModeContains, CompareModeStartsWith, CompareModeEndsWith:
		return true
	}
	return false
}
