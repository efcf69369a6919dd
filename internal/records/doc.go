// Package records defines the stored shape of member data and the conditions
// used to count integrity violations against it.
//
// Stored documents are loosely typed maps. MemberRecord lifts them into an
// explicit struct whose optional fields keep the distinction between a key
// that is missing, a key that holds null, and a key that holds a value.
package records
