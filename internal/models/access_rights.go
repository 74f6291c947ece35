package models

// Capability names a single boolean permission in an AccessRights record.
type Capability string

const (
	CanViewMonitoring      Capability = "can_view_monitoring"
	CanViewNotifications   Capability = "can_view_notifications"
	CanViewLocations       Capability = "can_view_locations"
	CanViewReports         Capability = "can_view_reports"
	CanViewAdmin           Capability = "can_view_admin"
	CanManageUsers         Capability = "can_manage_users"
	CanManageCompanies     Capability = "can_manage_companies"
	CanViewSecurity        Capability = "can_view_security"
	CanManageNotifications Capability = "can_manage_notifications"
	CanCreateLocations     Capability = "can_create_locations"
	CanEditLocations       Capability = "can_edit_locations"
	CanDeleteLocations     Capability = "can_delete_locations"
	CanCreateContainers    Capability = "can_create_containers"
	CanEditContainers      Capability = "can_edit_containers"
	CanDeleteContainers    Capability = "can_delete_containers"
)

// AccessRights is a per-user set of named boolean capabilities controlling
// feature gating. When a record is present it always wins over the role
// fallback in the resolver.
type AccessRights struct {
	ID                     string `bson:"_id,omitempty" json:"id,omitempty"`
	UserID                 string `bson:"user_id,omitempty" json:"user_id,omitempty"`
	CanViewMonitoring      bool   `bson:"can_view_monitoring" json:"can_view_monitoring"`
	CanViewNotifications   bool   `bson:"can_view_notifications" json:"can_view_notifications"`
	CanViewLocations       bool   `bson:"can_view_locations" json:"can_view_locations"`
	CanViewReports         bool   `bson:"can_view_reports" json:"can_view_reports"`
	CanViewAdmin           bool   `bson:"can_view_admin" json:"can_view_admin"`
	CanManageUsers         bool   `bson:"can_manage_users" json:"can_manage_users"`
	CanManageCompanies     bool   `bson:"can_manage_companies" json:"can_manage_companies"`
	CanViewSecurity        bool   `bson:"can_view_security" json:"can_view_security"`
	CanManageNotifications bool   `bson:"can_manage_notifications" json:"can_manage_notifications"`
	CanCreateLocations     bool   `bson:"can_create_locations" json:"can_create_locations"`
	CanEditLocations       bool   `bson:"can_edit_locations" json:"can_edit_locations"`
	CanDeleteLocations     bool   `bson:"can_delete_locations" json:"can_delete_locations"`
	CanCreateContainers    bool   `bson:"can_create_containers" json:"can_create_containers"`
	CanEditContainers      bool   `bson:"can_edit_containers" json:"can_edit_containers"`
	CanDeleteContainers    bool   `bson:"can_delete_containers" json:"can_delete_containers"`
}

// Has returns the flag for the named capability. Unknown capabilities are
// denied.
func (r *AccessRights) Has(c Capability) bool {
	switch c {
	case CanViewMonitoring:
		return r.CanViewMonitoring
	case CanViewNotifications:
		return r.CanViewNotifications
	case CanViewLocations:
		return r.CanViewLocations
	case CanViewReports:
		return r.CanViewReports
	case CanViewAdmin:
		return r.CanViewAdmin
	case CanManageUsers:
		return r.CanManageUsers
	case CanManageCompanies:
		return r.CanManageCompanies
	case CanViewSecurity:
		return r.CanViewSecurity
	case CanManageNotifications:
		return r.CanManageNotifications
	case CanCreateLocations:
		return r.CanCreateLocations
	case CanEditLocations:
		return r.CanEditLocations
	case CanDeleteLocations:
		return r.CanDeleteLocations
	case CanCreateContainers:
		return r.CanCreateContainers
	case CanEditContainers:
		return r.CanEditContainers
	case CanDeleteContainers:
		return r.CanDeleteContainers
	default:
		return false
	}
}
