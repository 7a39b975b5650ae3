package constants

import "fmt"

const (
	RoleUser      = "user"
	RoleCommittee = "committee" // panitia event (scan QR di lokasi)
	RoleAdmin     = "admin"
	RoleOwner     = "owner"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess = "❌ Hanya admin atau panitia yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	// boleh verifikasi / consume QR
	VerifierRoles = []string{
		RoleCommittee,
		RoleAdmin,
		RoleOwner,
	}
)
