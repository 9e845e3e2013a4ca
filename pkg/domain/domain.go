package domain

import (
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// GetProtocol returns the protocol of a given URL
func GetProtocol(u string) (string, error) {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return "", errors.New("error parsing URL")
	}
	return strings.ToLower(parsedUrl.Scheme), nil
}

// GetDomain returns the registrable domain of a given URL, e.g.
// https://www.shop.example.co.uk/x -> example.co.uk
func GetDomain(u string) (string, error) {
	parsedUrl, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return "", errors.New("error parsing URL")
	}
	host := strings.TrimSuffix(strings.ToLower(parsedUrl.Hostname()), ".")
	if host == "" {
		return "", errors.New("URL has no host")
	}
	// IP literals and single-label hosts (localhost) have no public
	// suffix; they are their own scope.
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host, nil
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", err
	}
	return registrable, nil
}

// RegistrableDomain is GetDomain without the error: unparsable input
// yields an empty string.
func RegistrableDomain(u string) string {
	d, err := GetDomain(u)
	if err != nil {
		return ""
	}
	return d
}

// HostDomain reduces a bare host or a URL to its registrable domain,
// e.g. www.facebook.com -> facebook.com. Unusable input yields "".
func HostDomain(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return RegistrableDomain(host)
}

func IsSameDomain(domain string, u string) bool {
	d, err := GetDomain(u)
	return err == nil && domain != "" && domain == d
}

// IsHTTPURL reports whether u is an absolute http or https URL.
func IsHTTPURL(u string) bool {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsedUrl.Scheme)
	return (scheme == "http" || scheme == "https") && parsedUrl.Host != ""
}
