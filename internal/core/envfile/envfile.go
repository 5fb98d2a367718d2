// Package envfile extracts database credentials from a flat key=value file.
//
// The source format is the unstructured .env file the compose stack itself
// consumes: one key per line, values split on the first '='. There is no
// quoting, escaping, comment handling, or multi-line support, and the first
// matching line wins. That fragility is deliberate — the parser must stay
// exactly as loose as the file format it reads.
package envfile

import (
	"bufio"
	"os"
	"strings"
)

// =============================================================================
// Recognized Keys
// =============================================================================

const (
	// KeyUser is the database root username.
	KeyUser = "DB_ROOT_USER"
	// KeyPassword is the database root password.
	KeyPassword = "DB_ROOT_PASSWORD"
	// KeyDatabase is the logical database name.
	KeyDatabase = "DB_NAME"
	// KeyPort is the host port the edge proxy listens on.
	KeyPort = "HTTP_PORT"
)

// Field names a single credential field, for error reporting.
type Field string

const (
	FieldUser     Field = "user"
	FieldPassword Field = "password"
	FieldDatabase Field = "database"
	FieldPort     Field = "port"
)

// =============================================================================
// Credentials
// =============================================================================

// Credentials holds the values extracted for the four recognized keys.
// A missing key yields an empty string, never an error; callers that need
// a field check presence at the point of use.
type Credentials struct {
	User     string
	Password string
	Database string
	Port     string
}

// Get returns the value of a single field.
func (c Credentials) Get(f Field) string {
	switch f {
	case FieldUser:
		return c.User
	case FieldPassword:
		return c.Password
	case FieldDatabase:
		return c.Database
	case FieldPort:
		return c.Port
	}
	return ""
}

// Missing returns the subset of fields that are empty, in a stable order.
func (c Credentials) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if c.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// AllFields lists every recognized field, in reporting order.
func AllFields() []Field {
	return []Field{FieldUser, FieldPassword, FieldDatabase, FieldPort}
}

// =============================================================================
// Reading
// =============================================================================

// Read scans the file at path for the four recognized keys.
//
// A nonexistent file is a normal state (first-run setup) and produces empty
// Credentials with no error. Each key matches the first line that begins
// with its name; the value is everything after the first '=', trimmed.
func Read(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, err
	}
	defer f.Close()

	var creds Credentials
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if creds.User == "" && strings.HasPrefix(line, KeyUser) {
			creds.User = splitValue(line)
		}
		if creds.Password == "" && strings.HasPrefix(line, KeyPassword) {
			creds.Password = splitValue(line)
		}
		if creds.Database == "" && strings.HasPrefix(line, KeyDatabase) {
			creds.Database = splitValue(line)
		}
		if creds.Port == "" && strings.HasPrefix(line, KeyPort) {
			creds.Port = splitValue(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// splitValue returns the trimmed text after the first '=' in line,
// or "" when the line has no separator.
func splitValue(line string) string {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
