package telegram

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
)

func chainNames(mws []Middleware) []string {
	names := make([]string, len(mws))
	for i, mw := range mws {
		names[i] = mw.Name
	}
	return names
}

func TestDefaultMiddlewaresOrder(t *testing.T) {
	cases := map[string]struct {
		cfg  *coreconfig.Config
		want []string
	}{
		"nil config": {nil, []string{"recover", "logger", "metrics"}},
		"no limit":   {&coreconfig.Config{}, []string{"recover", "logger", "metrics"}},
		"limited": {
			&coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500}},
			[]string{"recover", "rate_limit", "logger", "metrics"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := chainNames(DefaultMiddlewares(tc.cfg, MiddlewareOptions{}))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("chain mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
