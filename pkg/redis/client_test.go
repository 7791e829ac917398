package redis

import (
	"testing"

	"github.com/tokopos/terminal-api/pkg/config"
)

func testRedisConfig(url, address string) config.RedisConfig {
	return config.RedisConfig{
		URL:      url,
		Address:  address,
		PoolSize: 10,
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}

	cases := []struct {
		got  string
		want string
	}{
		{client.SessionKey("s1"), "tokopos:session:s1"},
		{client.PreferenceKey("s1", "currency"), "tokopos:prefs:s1:currency"},
		{client.IdempotencyKey("s1|POST|/api/v1/checkout", "key-1"), "tokopos:idempotency:s1|POST|/api/v1/checkout:key-1"},
		{client.CurrencyChannel("s1"), "tokopos:currency:s1"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %q got %q", tc.want, tc.got)
		}
	}
}

func TestKeyBuilderSkipsEmptyParts(t *testing.T) {
	client := &Client{}
	if got := client.PreferenceKey("", "currency"); got != "tokopos:prefs:currency" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(testRedisConfig("", "")); err == nil {
		t.Fatalf("expected error without url or address")
	}
}

func TestOptionsFromConfigAddress(t *testing.T) {
	opts, err := optionsFromConfig(testRedisConfig("", "localhost:6379"))
	if err != nil {
		t.Fatalf("optionsFromConfig: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
}

func TestOptionsFromConfigURL(t *testing.T) {
	opts, err := optionsFromConfig(testRedisConfig("redis://:secret@localhost:6380/2", ""))
	if err != nil {
		t.Fatalf("optionsFromConfig: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 {
		t.Fatalf("url not parsed: addr=%q db=%d", opts.Addr, opts.DB)
	}
}

func TestOptionsFromConfigInvalidURL(t *testing.T) {
	if _, err := optionsFromConfig(testRedisConfig("::not-a-url", "")); err == nil {
		t.Fatalf("expected parse error")
	}
}
