package market

import "net/url"

// relay rewrites a target URL into a request against a public forwarding
// service. The upstream chart endpoint rejects anonymous browser-origin
// traffic, so every call is routed through one of these.
type relay struct {
	name    string
	rewrite func(target string) string
}

func defaultRelays() []relay {
	return []relay{
		{
			name: "allorigins",
			rewrite: func(target string) string {
				return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
			},
		},
		{
			name: "corsproxy",
			rewrite: func(target string) string {
				return "https://corsproxy.io/?" + url.QueryEscape(target)
			},
		},
		{
			name: "thingproxy",
			rewrite: func(target string) string {
				return "https://thingproxy.freeboard.io/fetch/" + target
			},
		},
	}
}
