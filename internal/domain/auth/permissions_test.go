package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestOnlyOwnerHoldsOrgAdmin(t *testing.T) {
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if perm == PermOrgAdmin && role != RoleOwner {
				t.Fatalf("role %s must not hold %s", role, PermOrgAdmin)
			}
		}
	}
}

func TestManagerLacksDirectoryRead(t *testing.T) {
	for _, perm := range RolePermissions[RoleManager] {
		if perm == PermEmployeesRead {
			t.Fatal("manager visibility comes from the reporting relation, not employees.read")
		}
	}
}
