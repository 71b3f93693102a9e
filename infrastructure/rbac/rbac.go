package rbac

import (
	"slices"
	"strings"

	"gridstock/infrastructure/cache"
	"gridstock/models"
)

const (
	RoleAdmin = models.RoleAdmin
	RoleStaff = models.RoleStaff
)

// Roles lists the roles a user may hold.
var Roles = []string{RoleAdmin, RoleStaff}

func IsKnownRole(role string) bool {
	return slices.Contains(Roles, role)
}

// Rbac stores route resources in cache. Admins bypass the check, so only
// staff grants need registering.
type Rbac struct {
	cache *cache.RbacRolesCache
}

func New(c *cache.RbacRolesCache) *Rbac {
	return &Rbac{cache: c}
}

func (r *Rbac) Add(role, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(role, cache.Resource{
		Role:             role,
		UserResourceCode: code,
		Method:           strings.ToUpper(method),
		Path:             path,
	})
}

// Allows reports whether any of roles may call method on urlPath.
func (r *Rbac) Allows(roles []string, urlPath, method string) bool {
	if r == nil || r.cache == nil || len(roles) == 0 {
		return false
	}
	if slices.Contains(roles, RoleAdmin) {
		return true
	}
	return ValidateResourceAccess(r.cache.GetRolesAndResources(roles), urlPath, method)
}

func ValidateResourceAccess(resources []cache.Resource, urlPath, method string) bool {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method != method {
			continue
		}
		if matchPath(res.Path, urlPath) {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	pattern = strings.Trim(pattern, "/")
	path = strings.Trim(path, "/")

	patternSeg := strings.Split(pattern, "/")
	pathSeg := strings.Split(path, "/")

	// Segment wildcards: /a/*/c matches /a/1/c.
	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if patternSeg[i] == "*" {
				continue
			}
			if patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}

	// Trailing wildcard: /a/b/* matches any deeper suffix.
	if len(patternSeg) > 0 && patternSeg[len(patternSeg)-1] == "*" {
		prefix := "/" + strings.Join(patternSeg[:len(patternSeg)-1], "/")
		return strings.HasPrefix("/"+path, prefix+"/") || "/"+path == prefix
	}

	return false
}
