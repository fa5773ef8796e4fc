// Package policy holds the access rules every guarded operation consults.
package policy

import "github.com/Domenick1991/travelbooking/internal/domain"

// CanCancel reports whether principal may cancel a booking owned by ownerID.
func CanCancel(principal domain.Principal, ownerID int64) bool {
	return principal.IsAdmin() || principal.ID == ownerID
}

// CanViewAll reports whether principal may list bookings of every owner.
func CanViewAll(principal domain.Principal) bool {
	return principal.IsAdmin()
}

// OwnerScope returns the owner filter a listing must apply for principal,
// or nil when every owner is visible.
func OwnerScope(principal domain.Principal) *int64 {
	if CanViewAll(principal) {
		return nil
	}
	id := principal.ID
	return &id
}
