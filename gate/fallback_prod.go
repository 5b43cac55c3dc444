//go:build !dev

package gate

func defaultFallbackPolicy() FallbackPolicy {
	return denyFallback{}
}
