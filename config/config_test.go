package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":    "9090",
		"BAD_INT": "nine",
		"EMPTY":   "",
		"FLAG":    "true",
		"ORIGINS": "http://a.test, ,http://b.test",
	}

	assert.Equal(t, 9090, GetInt(c, "PORT", 8080))
	assert.Equal(t, 8080, GetInt(c, "BAD_INT", 8080))
	assert.Equal(t, int64(7), GetInt64(c, "MISSING", 7))
	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.True(t, GetBool(c, "FLAG", false))
	assert.False(t, GetBool(c, "PORT", false))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, GetList(c, "ORIGINS"))
	assert.Nil(t, GetList(nil, "ORIGINS"))
}

func TestSplit(t *testing.T) {
	k, v := split("A=b=c")
	assert.Equal(t, "A", k)
	assert.Equal(t, "b=c", v)

	k, v = split("LONE")
	assert.Equal(t, "LONE", k)
	assert.Equal(t, "", v)
}
