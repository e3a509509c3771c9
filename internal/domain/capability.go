package domain

// CapabilitySet 角色推导出的布尔权限集；admin 蕴含全部生产者/买家能力
type CapabilitySet struct {
	CanAdmin          bool `json:"canAdmin"`
	CanSellAsProducer bool `json:"canSellAsProducer"`
	CanBuy            bool `json:"canBuy"`
	CanOfferCare      bool `json:"canOfferCare"`
	CanModerate       bool `json:"canModerate"`
}

// ResolveCapabilities 角色到能力的唯一映射，所有 guard 统一走这里
// 避免各路由各写一份权限判断导致漂移
func ResolveCapabilities(r Role) CapabilitySet {
	switch r {
	case RoleAdmin:
		return CapabilitySet{
			CanAdmin:          true,
			CanSellAsProducer: true,
			CanBuy:            true,
			CanOfferCare:      true,
			CanModerate:       true,
		}
	case RoleProducer:
		return CapabilitySet{
			CanSellAsProducer: true,
			CanBuy:            true,
			CanOfferCare:      true,
		}
	case RoleBuyer:
		return CapabilitySet{CanBuy: true}
	}
	// 未知角色一律空能力（fail closed）
	return CapabilitySet{}
}

// RequireAuth 身份缺失返回 ErrUnauthenticated，否则原样返回
func RequireAuth(id *Identity) (*Identity, error) {
	if id == nil || id.ID == "" {
		return nil, ErrUnauthenticated
	}
	return id, nil
}

// RequireAdmin 先认证再校验 CanAdmin
func RequireAdmin(id *Identity) (*Identity, error) {
	id, err := RequireAuth(id)
	if err != nil {
		return nil, err
	}
	if !id.Capabilities().CanAdmin {
		return nil, ErrForbidden
	}
	return id, nil
}

// RequireProducerOrAdmin 先认证再校验 CanSellAsProducer
func RequireProducerOrAdmin(id *Identity) (*Identity, error) {
	id, err := RequireAuth(id)
	if err != nil {
		return nil, err
	}
	if !id.Capabilities().CanSellAsProducer {
		return nil, ErrForbidden
	}
	return id, nil
}
