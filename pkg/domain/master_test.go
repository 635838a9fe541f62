package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMasterConfigApplyDefaults(t *testing.T) {
	m := MasterConfig{Store: "/var/lib/scrapyard"}
	m.ApplyDefaults()

	assert.Equal(t, DefaultMaxRetries, m.MaxRetries)
	assert.Equal(t, int64(DefaultRequestTimeout), m.RequestTimeout)
	assert.Equal(t, int64(DefaultScriptTimeout), m.ScriptTimeout)
}

func TestMasterConfigValidate(t *testing.T) {
	assert.Error(t, MasterConfig{}.Validate())
	assert.NoError(t, MasterConfig{Store: "/var/lib/scrapyard"}.Validate())
}

func TestBuildIdent(t *testing.T) {
	assert.Equal(t, "scrapyard 1.2.3 (git abc123)", BuildIdent("scrapyard", "1.2.3", "abc123"))
}
