package schema

import (
	"fmt"
	"os"
	"regexp"
)

// secretPlaceholder matches {{ENV_VAR_NAME}} references embedded in document
// fields such as a sender's channel api_key or a destination connection
// password, resolved against the process environment at load time so
// schema YAML never carries a live credential.
var secretPlaceholder = regexp.MustCompile(`^\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}$`)

// resolveSecret returns raw unchanged unless it is exactly a {{NAME}}
// placeholder, in which case it resolves NAME from the environment. A
// placeholder referencing an unset variable is an error: a schema that
// names a secret it cannot resolve must fail to load, not silently ingest
// with an empty credential.
func resolveSecret(raw string) (string, error) {
	m := secretPlaceholder.FindStringSubmatch(raw)
	if m == nil {
		return raw, nil
	}
	name := m[1]
	val, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("secret placeholder {{%s}}: environment variable not set", name)
	}
	return val, nil
}
