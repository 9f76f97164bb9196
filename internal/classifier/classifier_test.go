package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DefaultRules(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		category string
		want     string
	}{
		{
			name:     "sectigo full issuer string",
			category: "Sectigo RSA Domain Validation Secure Server CA",
			want:     "SECTIGO",
		},
		{
			name:     "comodo routes to sectigo",
			category: "COMODO RSA Certification Authority",
			want:     "SECTIGO",
		},
		{
			name:     "digicert",
			category: "DigiCert TLS RSA SHA256 2020 CA1",
			want:     "DIGICERT",
		},
		{
			name:     "lets encrypt with apostrophe",
			category: "Let's Encrypt Authority X3",
			want:     "LETSENCRYPT",
		},
		{
			name:     "isrg root",
			category: "ISRG Root X1",
			want:     "LETSENCRYPT",
		},
		{
			name:     "starfield routes to godaddy",
			category: "Starfield Secure Certificate Authority - G2",
			want:     "GODADDY",
		},
		{
			name:     "internal ca",
			category: "Acme Corp Internal Issuing CA 02",
			want:     "INTERNAL",
		},
		{
			name:     "unknown falls to default",
			category: "Thawte SSL CA",
			want:     DefaultBucket,
		},
		{
			name:     "empty input falls to default",
			category: "",
			want:     DefaultBucket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.category))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New()
	first := c.Classify("GlobalSign Organization Validation CA")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify("GlobalSign Organization Validation CA"))
	}
	assert.Equal(t, "GLOBALSIGN", first)
}

func TestClassify_OrderMatters(t *testing.T) {
	// A category matching two triggers takes the earlier rule.
	c := New(
		Rule{Trigger: "secure", Bucket: "FIRST"},
		Rule{Trigger: "server", Bucket: "SECOND"},
	)
	assert.Equal(t, "FIRST", c.Classify("Secure Server CA"))
}

func TestLabel(t *testing.T) {
	c := New()
	assert.Equal(t, "Sectigo", c.Label("SECTIGO"))
	assert.Equal(t, "Let's Encrypt", c.Label("letsencrypt"))
	assert.Equal(t, DefaultLabel, c.Label(DefaultBucket))
	assert.Equal(t, "UNKNOWN", c.Label("unknown"))
}

func TestLoadRulesFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rules.yaml")

	content := `rules:
  - trigger: example
    bucket: EXAMPLE
    label: Example CA
  - trigger: other
    bucket: OTHER
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rules, err := LoadRulesFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	c := New(rules...)
	assert.Equal(t, "EXAMPLE", c.Classify("Example Issuing CA"))
	assert.Equal(t, "Example CA", c.Label("EXAMPLE"))
	// Label defaults to the bucket name when omitted
	assert.Equal(t, "OTHER", c.Label("OTHER"))
	// Built-in rules are replaced, not merged
	assert.Equal(t, DefaultBucket, c.Classify("Sectigo"))
}

func TestLoadRulesFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	empty := filepath.Join(tmpDir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("rules: []\n"), 0644))
	_, err := LoadRulesFile(empty)
	assert.Error(t, err)

	missing := filepath.Join(tmpDir, "missing.yaml")
	require.NoError(t, os.WriteFile(missing, []byte("rules:\n  - bucket: X\n"), 0644))
	_, err = LoadRulesFile(missing)
	assert.Error(t, err)

	_, err = LoadRulesFile(filepath.Join(tmpDir, "nope.yaml"))
	assert.Error(t, err)
}
