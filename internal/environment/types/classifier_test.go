package types

import "testing"

func TestClassifyEnvVar(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantType  EnvType
		sensitive bool
	}{
		{"POSTGRES_PASSWORD", "", EnvTypeSecret, true},
		{"POSTGRES_USER", "losb", EnvTypeDatabase, false},
		{"POSTGRES_NAME", "losb", EnvTypeDatabase, false},
		{"DATABASE_URL", "postgres://u:p@db/losb", EnvTypeDatabase, true},
		{"SECRET_KEY", "", EnvTypeSecret, true},
		{"ALLOWED_HOSTS_URL", "http://example.org", EnvTypeURL, false},
		{"DEBUG", "true", EnvTypeBoolean, false},
		{"WORKERS", "4", EnvTypeNumeric, false},
		{"DJANGO_SETTINGS_MODULE", "app.settings", EnvTypeConfig, false},
		{"REQUEST_ID", "550e8400-e29b-41d4-a716-446655440000", EnvTypeGenerated, true},
		{"PATH", "/usr/bin", EnvTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotSensitive := ClassifyEnvVar(tt.name, tt.value)
			if gotType != tt.wantType {
				t.Errorf("type = %v, want %v", gotType, tt.wantType)
			}
			if gotSensitive != tt.sensitive {
				t.Errorf("sensitive = %v, want %v", gotSensitive, tt.sensitive)
			}
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", "changeme", "CHANGEME", "<password>", "${POSTGRES_PASSWORD}", "  "} {
		if !IsPlaceholder(v) {
			t.Errorf("expected %q to be a placeholder", v)
		}
	}
	for _, v := range []string{"hunter2", "s3cr3t-value", "losb"} {
		if IsPlaceholder(v) {
			t.Errorf("expected %q not to be a placeholder", v)
		}
	}
}

func TestEnvTypeString(t *testing.T) {
	if EnvTypeDatabase.String() != "database" {
		t.Errorf("unexpected %s", EnvTypeDatabase)
	}
	text, _ := EnvTypeSecret.MarshalText()
	if string(text) != "secret" {
		t.Errorf("unexpected %s", text)
	}
}
