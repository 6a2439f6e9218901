package policy

// Package policy computes folder visibility from identity records. It is pure:
// callers load the identity table and pass it in, which keeps the functions
// deterministic and trivially testable.

import (
	"slices"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
)

// AccessibleFolders returns the set of folders the identity may read.
//
// Admins see the deduplicated, sorted union of every record's folders,
// including their own. Viewers see exactly their own authorized list,
// unmodified. The result may be empty; callers treat that as a configuration
// error before touching storage.
func AccessibleFolders(identity domainauth.Identity, all []domainauth.Identity) []string {
	if identity.Role != domainauth.RoleAdmin {
		return slices.Clone(identity.Folders)
	}

	seen := make(map[string]struct{})
	var union []string
	for _, rec := range all {
		for _, f := range rec.Folders {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			union = append(union, f)
		}
	}
	slices.Sort(union)
	return union
}

// Authorized reports whether folder is a member of the accessible set.
func Authorized(folder string, accessible []string) bool {
	return slices.Contains(accessible, folder)
}

// CanEdit reports whether the role carries notes-edit rights. The policy only
// authorizes the attempt; the write itself belongs to the storage collaborator.
func CanEdit(role domainauth.Role) bool {
	return role == domainauth.RoleAdmin
}
