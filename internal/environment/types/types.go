package types

type EnvType int

const (
	EnvTypeUnknown EnvType = iota
	EnvTypeSecret
	EnvTypeDatabase
	EnvTypeConfig
	EnvTypeGenerated // Detected as generated (nanoid, uuid, random string)
	EnvTypeURL
	EnvTypeBoolean
	EnvTypeNumeric
)

func (t EnvType) String() string {
	switch t {
	case EnvTypeSecret:
		return "secret"
	case EnvTypeDatabase:
		return "database"
	case EnvTypeGenerated:
		return "generated"
	case EnvTypeURL:
		return "url"
	case EnvTypeBoolean:
		return "boolean"
	case EnvTypeNumeric:
		return "numeric"
	case EnvTypeConfig:
		return "config"
	default:
		return "unknown"
	}
}

func (t EnvType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Origin says how a variable was found.
type Origin string

const (
	OriginInterpolation Origin = "interpolation" // ${VAR} in the manifest
	OriginEnvironment   Origin = "environment"   // literal environment: entry
	OriginDotEnv        Origin = "dotenv"        // key in a .env style file
	OriginDockerfile    Origin = "dockerfile"    // ENV instruction
	OriginUsage         Origin = "usage"         // read by application source
)

type EnvResult struct {
	VarName    string
	Value      string
	HasDefault bool // interpolation carried a ${VAR:-default}
	Required   bool // interpolation used ${VAR:?err}
	Origin     Origin
	Type       EnvType
	Sensitive  bool
	Source     string // e.g., "docker-compose:/path/to/file"
	Confidence int
}
