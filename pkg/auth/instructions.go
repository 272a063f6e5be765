package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAPIKeyGuide explains how to obtain a Flickr API key
func ShowAPIKeyGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "FLICKR API KEY")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flickrscraper calls flickr.photos.search and needs an API key.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Sign in at https://www.flickr.com")
	fmt.Fprintln(w, "2. Open https://www.flickr.com/services/apps/create/apply")
	fmt.Fprintln(w, "3. Apply for a non-commercial key and describe your project")
	fmt.Fprintln(w, "4. Copy the Key (and optionally the Secret) shown afterwards")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then either:")
	fmt.Fprintln(w, "   flickrscraper auth login            store it in the keychain")
	fmt.Fprintln(w, "   export FLICKR_API_KEY=<key>          use it for this shell only")
	fmt.Fprintln(w, "   echo FLICKR_API_KEY=<key> >> .env    load it from a .env file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys are rate limited by Flickr; keep --delay at 1s or more for")
	fmt.Fprintln(w, "large runs.")
	fmt.Fprintln(w, rule)
}
