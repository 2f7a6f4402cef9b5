package types

import (
	"strconv"
	"strings"
	"unicode"
)

var secretPatterns = []string{
	"secret", "key", "token", "password", "pass", "pwd",
	"auth", "authorization", "credential", "cred",
	"private", "priv", "cert", "certificate",
	"api_key", "apikey", "access_key", "secret_key",
	"client_secret", "client_id", "oauth",
	"bearer", "jwt", "session", "cookie",
	"salt", "hash", "signature", "signing",
	"encryption", "decrypt", "cipher",
	"webhook", "hook", "vault", "store", "secure",
}

var databasePatterns = []string{
	"database_url", "db_url", "dsn", "connection_string",
	"postgres_url", "mysql_url", "mongodb_url", "redis_url",
	"postgres_user", "postgres_name", "postgres_db", "postgres_host", "postgres_port",
	"db_name", "db_user", "db_host",
}

// placeholderValues are values an env example uses in place of a real secret.
var placeholderValues = []string{
	"", "changeme", "change-me", "change_me", "example", "secret", "password",
	"xxx", "todo", "replace-me", "your-password", "<secret>", "<password>",
}

var systemEnvVars = []string{
	"path", "home", "user", "shell", "pwd", "lang", "term", "tmpdir",
	"ps1", "ps2", "ifs", "mail", "mailpath", "optind", "editor",
	"pager", "browser", "display", "xauthority", "ssh_auth_sock",
	"oldpwd", "shlvl", "hostname", "logname", "uid", "gid",
}

// ShouldIgnore reports whether name is a shell or system variable that no
// deployment needs to supply.
func ShouldIgnore(name string) bool {
	nameLower := strings.ToLower(name)
	for _, sysVar := range systemEnvVars {
		if nameLower == sysVar {
			return true
		}
	}
	return false
}

// IsPlaceholder reports whether value is an obvious stand-in rather than a
// real credential.
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, p := range placeholderValues {
		if v == p {
			return true
		}
	}
	return strings.HasPrefix(v, "${") || (strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">"))
}

// ClassifyEnvVar returns the type of a variable and whether its value must be
// treated as sensitive.
func ClassifyEnvVar(name, value string) (EnvType, bool) {
	if ShouldIgnore(name) {
		return EnvTypeUnknown, false
	}

	nameLower := strings.ToLower(name)

	// Check if value looks generated first
	if looksGenerated(value) {
		return EnvTypeGenerated, true
	}

	// General secrets take precedence so POSTGRES_PASSWORD is a secret.
	for _, pattern := range secretPatterns {
		if strings.Contains(nameLower, pattern) {
			return EnvTypeSecret, true
		}
	}

	// Connection strings embed credentials; plain names and hosts do not.
	for _, pattern := range databasePatterns {
		if strings.Contains(nameLower, pattern) {
			return EnvTypeDatabase, strings.Contains(value, "@") || isConnectionString(pattern)
		}
	}

	// URL patterns
	if strings.HasPrefix(value, "http") || strings.Contains(nameLower, "url") ||
		strings.Contains(nameLower, "webhook") {
		return EnvTypeURL, false
	}

	// Boolean patterns
	if value == "true" || value == "false" || strings.Contains(nameLower, "enable") ||
		strings.Contains(nameLower, "flag") {
		return EnvTypeBoolean, false
	}

	// Numeric patterns
	if isNumeric(value) {
		return EnvTypeNumeric, false
	}

	return EnvTypeConfig, false
}

func isConnectionString(pattern string) bool {
	return strings.HasSuffix(pattern, "_url") || pattern == "dsn" || pattern == "connection_string"
}

// generatedShapes recognise values produced by a generator rather than
// typed by a person.
var generatedShapes = []func(string) bool{
	isUUID,
	func(v string) bool { return len(v) >= 16 && isURLSafe(v) },              // nanoid, random tokens
	func(v string) bool { return len(v) > 50 && strings.Count(v, ".") == 2 }, // JWT
	func(v string) bool { return len(v) >= 20 && mixedCase(v) && distinctRatio(v) > 0.5 },
}

func looksGenerated(value string) bool {
	if len(value) < 8 {
		return false
	}
	for _, shape := range generatedShapes {
		if shape(value) {
			return true
		}
	}
	return false
}

func isUUID(v string) bool {
	return len(v) == 36 && strings.Count(v, "-") == 4
}

func isURLSafe(v string) bool {
	return strings.IndexFunc(v, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'))
	}) < 0
}

// distinctRatio is the share of distinct runes in v.
func distinctRatio(v string) float64 {
	seen := make(map[rune]bool)
	n := 0
	for _, r := range v {
		seen[r] = true
		n++
	}
	return float64(len(seen)) / float64(n)
}

func mixedCase(v string) bool {
	return strings.IndexFunc(v, unicode.IsUpper) >= 0 && strings.IndexFunc(v, unicode.IsLower) >= 0
}

func isNumeric(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}
