package domain

import (
	"time"

	"gorm.io/gorm"
)

// Role 会话期内不可变；能力集由角色纯函数推导
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleProducer Role = "producer"
	RoleAdmin    Role = "admin"
)

// Roles 全量角色枚举（能力映射必须完整覆盖）
var Roles = []Role{RoleBuyer, RoleProducer, RoleAdmin}

func ValidRole(r Role) bool {
	switch r {
	case RoleBuyer, RoleProducer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string         `gorm:"size:64" json:"name"`
	PasswordHash string         `gorm:"size:191" json:"-"`
	Role         Role           `gorm:"size:16" json:"role"`
	ZipCode      string         `gorm:"size:10;index" json:"zipCode"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Identity 请求级身份（由 JWT 解析得到，只读）
type Identity struct {
	ID   string
	Role Role
}

func (id *Identity) Capabilities() CapabilitySet {
	if id == nil {
		return CapabilitySet{}
	}
	return ResolveCapabilities(id.Role)
}
