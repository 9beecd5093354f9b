package storage

import "testing"

func TestKeyFromURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			"presigned link",
			"https://minio.local:9000/teeup-avatars/avatars/user-p1/abc.png?X-Amz-Signature=deadbeef",
			"avatars/user-p1/abc.png",
		},
		{"empty", "", ""},
		{"non-avatar path", "https://minio.local:9000/teeup-avatars/other/abc.png", ""},
		{"unparseable", "://not a url", ""},
	}
	for _, tc := range cases {
		if got := KeyFromURL(tc.url); got != tc.want {
			t.Fatalf("%s: KeyFromURL(%q) = %q, want %q", tc.name, tc.url, got, tc.want)
		}
	}
}
