package records

// Stored field names of member documents.
const (
	IdentifierFieldName  = "_id"
	NameFieldName        = "name"
	PackageIDFieldName   = "packageId"
	PackageNameFieldName = "packageName"
)

// MemberRecord represents one gym member as stored.
type MemberRecord struct {
	ID          string
	Name        Field
	PackageID   Field
	PackageName Field
}

// MemberFromDocument lifts a stored document into a MemberRecord.
func MemberFromDocument(document Document) MemberRecord {
	identifier, _ := document.Field(IdentifierFieldName).Value()
	return MemberRecord{
		ID:          identifier,
		Name:        document.Field(NameFieldName),
		PackageID:   document.Field(PackageIDFieldName),
		PackageName: document.Field(PackageNameFieldName),
	}
}
