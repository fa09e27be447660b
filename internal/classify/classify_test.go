package classify

import (
	"testing"

	"github.com/akinloluwami/openpanel/internal/models"
)

const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		rc   models.RequestContext
		want Kind
	}{
		{
			name: "all empty is server",
			rc:   models.RequestContext{},
			want: KindServer,
		},
		{
			name: "undefined ua counts as unset",
			rc:   models.RequestContext{UserAgent: "undefined"},
			want: KindServer,
		},
		{
			name: "ip alone is browser",
			rc:   models.RequestContext{IP: "203.0.113.9"},
			want: KindBrowser,
		},
		{
			name: "bot ua",
			rc:   models.RequestContext{IP: "203.0.113.9", UserAgent: "Googlebot/2.1"},
			want: KindBot,
		},
		{
			name: "browser",
			rc:   models.RequestContext{IP: "203.0.113.9", Origin: "https://site.test", UserAgent: chromeUA},
			want: KindBrowser,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.rc)
			if got.Kind != tc.want {
				t.Fatalf("Classify(%+v).Kind = %d, want %d", tc.rc, got.Kind, tc.want)
			}
			if tc.want == KindBot && got.Bot == nil {
				t.Fatal("bot classification missing signature")
			}
		})
	}
}
