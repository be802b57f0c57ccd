package secret

import "fmt"

const (
	attrService = "service"
	attrAccount = "username"
	attrSchema  = "xdg:schema"

	genericSchema = "org.freedesktop.Secret.Generic"
)

// DefaultLabel 复现 go-keyring 创建 item 时使用的 label。
func DefaultLabel(id Identifier) string {
	return fmt.Sprintf("Password for '%s' on '%s'", id.Account, id.Service)
}

// matchItem 判断 collection 中的某个 item 是否属于 id。
// service 与 username 必须同时匹配，其余属性忽略。
func matchItem(attrs map[string]string, id Identifier) bool {
	if attrs == nil {
		return false
	}
	return attrs[attrService] == id.Service && attrs[attrAccount] == id.Account
}

// itemAttributes 构造写入时的属性集。读出时的额外属性会保留，
// 但 service / username / xdg:schema 总是以 id 为准。
func itemAttributes(id Identifier, rec Record) map[string]string {
	attrs := make(map[string]string, len(rec.Attributes)+3)
	for k, v := range rec.Attributes {
		attrs[k] = v
	}
	attrs[attrService] = id.Service
	attrs[attrAccount] = id.Account
	if attrs[attrSchema] == "" {
		attrs[attrSchema] = genericSchema
	}
	return attrs
}

func itemLabel(id Identifier, rec Record) string {
	if rec.Label != "" {
		return rec.Label
	}
	return DefaultLabel(id)
}
