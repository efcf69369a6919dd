package audit

import (
	"github.com/temirov/memberaudit/internal/records"
	"github.com/temirov/memberaudit/internal/spreadsheet"
)

// MemberValidator pairs a category with its client-side check and the
// condition a record source counts server-side. Both must agree.
type MemberValidator struct {
	Category  ViolationCategory
	Condition records.Condition
	Violates  func(member records.MemberRecord) bool
}

// MissingPackageName reports a package name that is absent, null, or "".
// Whitespace-only names are not missing.
func MissingPackageName(member records.MemberRecord) bool {
	return member.PackageName.IsAbsent() || member.PackageName.IsNull() || member.PackageName.IsEmptyString()
}

// MissingPackageID reports a package reference that is absent or null. An
// empty string is a present reference.
func MissingPackageID(member records.MemberRecord) bool {
	return member.PackageID.IsAbsent() || member.PackageID.IsNull()
}

// MissingCell reports a row that lacks column or holds "" in it.
func MissingCell(row spreadsheet.Row, column string) bool {
	value, exists := row.Lookup(column)
	return !exists || len(value) == 0
}

// DefaultMemberValidators returns the member checks in report order.
func DefaultMemberValidators() []MemberValidator {
	return []MemberValidator{
		{
			Category: ViolationMissingPackageName,
			Condition: records.Condition{
				Field: records.PackageNameFieldName,
				Terms: []records.Term{records.TermAbsent, records.TermNull, records.TermEmptyString},
			},
			Violates: MissingPackageName,
		},
		{
			Category: ViolationMissingPackageID,
			Condition: records.Condition{
				Field: records.PackageIDFieldName,
				Terms: []records.Term{records.TermAbsent, records.TermNull},
			},
			Violates: MissingPackageID,
		},
	}
}
