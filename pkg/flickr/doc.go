// Package flickr is a small client for the Flickr REST API.
//
// It covers the two calls the scraper makes: flickr.photos.search for one page
// of geotagged photos in a year, and a plain GET for the image bytes.
//
//	client := flickr.NewClient(apiKey, 30*time.Second, log)
//	resp, err := client.Search(ctx, flickr.SearchQuery{Year: 2015, Page: 1, PerPage: 250})
//	if err != nil {
//	    var fe *errors.FetchError
//	    ...
//	}
//	for _, raw := range resp.Photos.Photo {
//	    rec, err := photo.Parse(raw)
//	    ...
//	}
package flickr
