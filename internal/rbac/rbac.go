// Package rbac 角色权限表：role -> resource -> action 的静态矩阵。
//
// 授权只看 User.Role；User.Permissions 字段不参与判断。
package rbac

import (
	"errors"

	"safezone/internal/domain"
)

// ErrDenied 当前角色无此操作权限
var ErrDenied = errors.New("permission denied")

// Action 操作类型
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource 资源类型
type Resource string

const (
	ResourceZones   Resource = "zones"
	ResourceDevices Resource = "devices"
)

// Capability 单个操作的权限
// OwnOnly 为 true 时仅限自己创建的资源（类似 role_permissions.assigned_only）
type Capability struct {
	Allowed bool
	OwnOnly bool
}

var (
	allow   = Capability{Allowed: true}
	ownOnly = Capability{Allowed: true, OwnOnly: true}
)

var roleCapabilities = map[domain.Role]map[Resource]map[Action]Capability{
	domain.RoleAdmin: {
		ResourceZones:   {ActionCreate: allow, ActionRead: allow, ActionUpdate: allow, ActionDelete: allow},
		ResourceDevices: {ActionCreate: allow, ActionRead: allow, ActionUpdate: allow, ActionDelete: allow},
	},
	domain.RoleUser: {
		ResourceZones:   {ActionCreate: allow, ActionRead: allow, ActionUpdate: allow, ActionDelete: ownOnly},
		ResourceDevices: {ActionRead: allow, ActionUpdate: allow},
	},
	domain.RoleViewer: {
		ResourceZones:   {ActionRead: allow},
		ResourceDevices: {ActionRead: allow},
	},
}

// Lookup 查询角色对资源操作的权限，未定义的组合返回零值（拒绝）
func Lookup(role domain.Role, action Action, resource Resource) Capability {
	return roleCapabilities[role][resource][action]
}

// Can 用户是否具备该操作权限；nil 用户一律拒绝
// OwnOnly 的权限在这里视为允许，具体到某个区域时用 CanOnZone
func Can(user *domain.User, action Action, resource Resource) bool {
	if user == nil {
		return false
	}
	return Lookup(user.Role, action, resource).Allowed
}

// CanOnZone 针对具体区域判断，OwnOnly 时要求 zone.CreatedBy == user.ID
func CanOnZone(user *domain.User, action Action, zone domain.Zone) bool {
	if user == nil {
		return false
	}
	c := Lookup(user.Role, action, ResourceZones)
	if !c.Allowed {
		return false
	}
	if c.OwnOnly {
		return zone.CreatedBy != "" && zone.CreatedBy == user.ID
	}
	return true
}

func IsAdmin(user *domain.User) bool  { return user != nil && user.Role == domain.RoleAdmin }
func IsUser(user *domain.User) bool   { return user != nil && user.Role == domain.RoleUser }
func IsViewer(user *domain.User) bool { return user != nil && user.Role == domain.RoleViewer }

// Permissions 按角色生成展示用的权限对象（GET /api/user/permissions）
func Permissions(role domain.Role) domain.Permissions {
	crud := func(r Resource) domain.CRUD {
		return domain.CRUD{
			Create: Lookup(role, ActionCreate, r).Allowed,
			Read:   Lookup(role, ActionRead, r).Allowed,
			Update: Lookup(role, ActionUpdate, r).Allowed,
			Delete: Lookup(role, ActionDelete, r).Allowed,
		}
	}
	return domain.Permissions{
		Zones:   crud(ResourceZones),
		Devices: crud(ResourceDevices),
	}
}
