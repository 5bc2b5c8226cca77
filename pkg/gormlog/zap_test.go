package gormlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortCaller(t *testing.T) {
	cases := map[string]string{
		"":                                            "",
		"/home/ci/steamwatch/internal/models/game.go:12": "internal/models/game.go:12",
		"/src/steamwatch/pkg/config/config.go:3":         "pkg/config/config.go:3",
		"/a/b/c/d/e.go:7":                                "c/d/e.go:7",
		"/x/y.go:1":                                      "x/y.go:1",
	}
	for in, want := range cases {
		require.Equal(t, want, shortCaller(in), in)
	}
}
