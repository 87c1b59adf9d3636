package role

import "strings"

// Role identifies which actor a notification log or identity link belongs
// to. The three roles are access-isolated from each other by construction.
type Role struct {
	Name string
}

func (r Role) Code() string {
	return r.Name
}

func (r Role) Label() string {
	if len(r.Name) == 0 {
		return ""
	}
	return strings.ToUpper(r.Name[:1]) + r.Name[1:]
}

type Enum struct {
	Customer Role
	Vendor   Role
	Operator Role
}

var Roles = Enum{
	Customer: Role{Name: "customer"},
	Vendor:   Role{Name: "vendor"},
	Operator: Role{Name: "operator"},
}

var All = []Role{
	Roles.Customer,
	Roles.Vendor,
	Roles.Operator,
}

// ByName returns the role for a given name, or nil if not found
func ByName(name string) *Role {
	for _, r := range All {
		if r.Name == name {
			return &r
		}
	}
	return nil
}
