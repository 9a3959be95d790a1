package utils

const (
	OrganizationName                      = "PropertyHub"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
	DefaultTimeZone                       = "UTC"
)
