package artifacts

import (
	"bytes"
	"net/url"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// driveConfirmURL looks for the form Google Drive serves in place of files
// too large to virus-scan and returns the URL that submitting it requests.
// The form must carry both an id and a confirm field.
func driveConfirmURL(base *url.URL, page []byte) (string, bool) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", false
	}

	var found string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Form {
			if u, ok := confirmForm(base, n); ok {
				found = u
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return found, found != ""
}

func confirmForm(base *url.URL, form *html.Node) (string, bool) {
	q := url.Values{}
	var inputs func(n *html.Node)
	inputs = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Input {
			if name := attr(n, "name"); name != "" {
				q.Set(name, attr(n, "value"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			inputs(c)
		}
	}
	inputs(form)
	if q.Get("id") == "" || q.Get("confirm") == "" {
		return "", false
	}

	action, err := base.Parse(attr(form, "action"))
	if err != nil || (action.Scheme != "http" && action.Scheme != "https") {
		return "", false
	}
	action.RawQuery = q.Encode()
	return action.String(), true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
