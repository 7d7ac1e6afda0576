package insider_test

import (
	"testing"

	insider "github.com/RxDataLab/go-insider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinks(t *testing.T) {
	tests := []struct {
		name string
		page string
		want []string
	}{
		{
			name: "no table yields no links",
			page: `<html><body><p>Nothing filed yet.</p></body></html>`,
			want: nil,
		},
		{
			name: "empty page",
			page: ``,
			want: nil,
		},
		{
			name: "anchors in document order",
			page: `<html><body><table>
				<tr><td><a href="/a/first/">first</a></td></tr>
				<tr><td><a href="/a/second/">second</a></td></tr>
				<tr><td><a href="/a/third/">third</a></td></tr>
			</table></body></html>`,
			want: []string{"/a/first/", "/a/second/", "/a/third/"},
		},
		{
			name: "only the first table is consulted",
			page: `<html><body>
				<table><tr><td><a href="/in-first">x</a></td></tr></table>
				<table><tr><td><a href="/in-second">y</a></td></tr></table>
			</body></html>`,
			want: []string{"/in-first"},
		},
		{
			name: "anchors without href are skipped",
			page: `<html><body><table>
				<tr><td><a name="anchor-only">no target</a></td></tr>
				<tr><td><a href="/real">real</a></td></tr>
			</table></body></html>`,
			want: []string{"/real"},
		},
		{
			name: "table with no anchors",
			page: `<html><body><table><tr><td>plain text</td></tr></table></body></html>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := insider.ParseLinks([]byte(tt.page))
			require.NoError(t, err)
			assert.Equal(t, tt.want, links)
		})
	}
}

func TestFindIndexLink(t *testing.T) {
	tests := []struct {
		name  string
		links []string
		want  string
		found bool
	}{
		{
			name:  "matches dash-split index.html suffix",
			links: []string{"/Archives/data/123/0001-index.html"},
			want:  "/Archives/data/123/0001-index.html",
			found: true,
		},
		{
			name: "first match wins",
			links: []string{
				"/Archives/data/123/form4.xml",
				"/Archives/data/123/0001-index.html",
				"/Archives/data/123/0002-index.html",
			},
			want:  "/Archives/data/123/0001-index.html",
			found: true,
		},
		{
			name:  "index.htm does not match",
			links: []string{"/Archives/data/123/0001-index.htm"},
			found: false,
		},
		{
			name:  "index.html must follow a dash",
			links: []string{"/Archives/data/123/index.html"},
			found: false,
		},
		{
			name:  "empty input",
			links: nil,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := insider.FindIndexLink(tt.links)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
