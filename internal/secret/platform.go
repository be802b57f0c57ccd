package secret

// PlatformKind 返回当前平台 Store 的形态；不支持的平台返回空串。
func PlatformKind() Kind { return platformKind }
