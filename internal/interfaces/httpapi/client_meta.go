package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// unknownCountry follows the ISO 3166 user-assigned code for "unknown".
const unknownCountry = "ZZ"

var (
	clientIPHeaders      = []string{"Fly-Client-IP", "X-Forwarded-For", "X-Real-IP"}
	clientCountryHeaders = []string{"Fly-Client-Country", "CF-IPCountry", "X-Vercel-IP-Country", "CloudFront-Viewer-Country"}
)

// clientMeta is the caller identity attached to request logs.
type clientMeta struct {
	IP      string
	Country string
}

func clientMetaOf(r *http.Request) clientMeta {
	meta := clientMeta{Country: unknownCountry}

	for _, header := range clientIPHeaders {
		if ip := firstIP(r.Header.Get(header)); ip != "" {
			meta.IP = ip
			break
		}
	}
	if meta.IP == "" {
		meta.IP = firstIP(r.RemoteAddr)
	}

	for _, header := range clientCountryHeaders {
		if code := countryCode(r.Header.Get(header)); code != "" {
			meta.Country = code
			break
		}
	}

	return meta
}

// firstIP takes the left-most entry of a forwarded list and strips any port.
func firstIP(raw string) string {
	value, _, _ := strings.Cut(raw, ",")
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}

	parsed := net.ParseIP(value)
	if parsed == nil {
		return ""
	}
	return parsed.String()
}

func countryCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return ""
	}
	return code
}
