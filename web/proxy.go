package web

import (
	"net"
	"strings"

	"github.com/kataras/iris/v12"
)

const clientIPKey = "client_ip"

var trustedProxies = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"fc00::/7",
		"::1/128",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			nets = append(nets, network)
		}
	}
	return nets
}()

func isPrivateIP(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address ProxyIPMiddleware resolved for the request.
func ClientIP(ctx iris.Context) string {
	return ctx.Values().GetString(clientIPKey)
}

// ProxyIPMiddleware trusts X-Forwarded-For / X-Real-IP only when the direct peer
// is a private address, i.e. a reverse proxy in front of the service.
func ProxyIPMiddleware(ctx iris.Context) {
	ctx.Values().Set(clientIPKey, resolveClientIP(ctx.RemoteAddr(), ctx.GetHeader("X-Forwarded-For"), ctx.GetHeader("X-Real-IP")))
	ctx.Next()
}

func resolveClientIP(remoteAddr, forwardedFor, realIP string) string {
	remoteIP := net.ParseIP(remoteAddr)
	if remoteIP == nil || !isPrivateIP(remoteIP) {
		return remoteAddr
	}

	if forwardedFor != "" {
		for _, ip := range strings.Split(forwardedFor, ",") {
			parsedIP := net.ParseIP(strings.TrimSpace(ip))
			if parsedIP != nil && !isPrivateIP(parsedIP) {
				return parsedIP.String()
			}
		}
	}

	if realIP != "" {
		parsedIP := net.ParseIP(realIP)
		if parsedIP != nil && !isPrivateIP(parsedIP) {
			return parsedIP.String()
		}
	}

	return remoteAddr
}
