package domain

// Role 用户角色
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// CRUD 单个资源的增删改查权限
type CRUD struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// Permissions 细粒度权限对象
// 注意：授权判断只看 Role（见 rbac 包），这里仅用于展示
type Permissions struct {
	Zones   CRUD `json:"zones"`
	Devices CRUD `json:"devices"`
}

// NotificationPreferences 通知渠道偏好
type NotificationPreferences struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// Preferences 用户偏好
type Preferences struct {
	Language      string                  `json:"language"`
	Theme         string                  `json:"theme"`
	Notifications NotificationPreferences `json:"notifications"`
}

// User 用户
type User struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Role        Role         `json:"role"`
	Avatar      string       `json:"avatar,omitempty"`
	Permissions *Permissions `json:"permissions,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}
