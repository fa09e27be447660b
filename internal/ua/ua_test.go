package ua

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenParser(t *testing.T) {
	p := TokenParser{}

	cases := []struct {
		name string
		ua   string
		want Info
	}{
		{
			name: "chrome on mac",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: Info{OS: "macOS", OSVersion: "10.15.7", Browser: "Chrome", BrowserVersion: "120.0.0.0", Device: "desktop", Brand: "Apple"},
		},
		{
			name: "safari on iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			want: Info{OS: "iOS", Browser: "Safari", BrowserVersion: "17.1", Device: "mobile", Brand: "Apple", Model: "iPhone"},
		},
		{
			name: "firefox on windows",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: Info{OS: "Windows", OSVersion: "10.0", Browser: "Firefox", BrowserVersion: "121.0", Device: "desktop"},
		},
		{
			name: "edge identified before chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			want: Info{OS: "Windows", OSVersion: "10.0", Browser: "Edge", BrowserVersion: "120.0.2210.91", Device: "desktop"},
		},
		{
			name: "chrome on android phone",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want: Info{OS: "Android", OSVersion: "14", Browser: "Chrome", BrowserVersion: "120.0.0.0", Device: "mobile"},
		},
		{
			name: "empty",
			ua:   "",
			want: Info{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.Parse(tc.ua))
		})
	}
}
