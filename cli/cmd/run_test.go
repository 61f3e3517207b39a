package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockDepthTracksNestedConstructs(t *testing.T) {
	assert.Equal(t, 0, blockDepth("global x = 1"))
	assert.Equal(t, 1, blockDepth("if x > 0 do"))
	assert.Equal(t, 0, blockDepth("if x > 0 do print(x) endif"))
	assert.Equal(t, 2, blockDepth("for x in y do\nif x do"))
}

func TestResolveBindAddrPrecedence(t *testing.T) {
	oldHost, oldPort := host, port
	defer func() { host, port = oldHost, oldPort }()

	host, port = "", ""
	t.Setenv("DATACODE_WS_ADDRESS", "")
	assert.Equal(t, "127.0.0.1:8080", resolveBindAddr(Config{}))

	host, port = "0.0.0.0", "9000"
	assert.Equal(t, "0.0.0.0:9000", resolveBindAddr(Config{ListenAddr: "1.2.3.4:1"}))
}
