// Package identity classifies raw player identifier strings into
// known namespaces. Identifiers that fail classification are never
// trusted for identity and must not be persisted.
package identity

import (
	"regexp"
	"strings"

	"github.com/pdenton/rosterd/internal/model"
)

// Namespace is a recognized identifier namespace.
type Namespace string

const (
	NamespaceSteam   Namespace = "steam"
	NamespaceLicense Namespace = "license"
	NamespaceXbl     Namespace = "xbl"
	NamespaceLive    Namespace = "live"
	NamespaceDiscord Namespace = "discord"
	NamespaceFivem   Namespace = "fivem"
)

// LicensePrefix is the namespace prefix of the primary identifier.
const LicensePrefix = "license:"

var patterns = map[Namespace]*regexp.Regexp{
	NamespaceSteam:   regexp.MustCompile(`^steam:1100001[0-9A-Fa-f]{8}$`),
	NamespaceLicense: regexp.MustCompile(`^license:[0-9A-Fa-f]{40}$`),
	NamespaceXbl:     regexp.MustCompile(`^xbl:\d{14,20}$`),
	NamespaceLive:    regexp.MustCompile(`^live:\d{14,20}$`),
	NamespaceDiscord: regexp.MustCompile(`^discord:\d{7,20}$`),
	NamespaceFivem:   regexp.MustCompile(`^fivem:\d{1,8}$`),
}

// Classify returns the namespace a raw identifier belongs to.
// Malformed identifiers return ok=false rather than an error; callers
// are expected to filter on the result.
func Classify(id string) (Namespace, bool) {
	for ns, re := range patterns {
		if re.MatchString(id) {
			return ns, true
		}
	}
	return "", false
}

// IsValid reports whether the identifier classifies under any
// recognized namespace.
func IsValid(id string) bool {
	_, ok := Classify(id)
	return ok
}

// Filter returns the identifiers that classify, preserving order.
func Filter(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if IsValid(id) {
			out = append(out, id)
		}
	}
	return out
}

// Invalid returns the identifiers that fail classification.
func Invalid(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !IsValid(id) {
			out = append(out, id)
		}
	}
	return out
}

// licenseValueLength is the length of the value part of a license
// identifier.
const licenseValueLength = 40

// PrimaryID extracts the primary license identifier value from a set
// of raw identifiers. The first identifier shaped like a license
// wins. Extraction checks shape (prefix and length) rather than the
// strict hex pattern so reserved sentinel licenses still key a
// session; ledger-facing callers validate with Classify instead.
func PrimaryID(ids []string) (model.PlayerID, bool) {
	for _, id := range ids {
		value, found := strings.CutPrefix(id, LicensePrefix)
		if found && len(value) == licenseValueLength {
			return model.PlayerID(value), true
		}
	}
	return "", false
}
