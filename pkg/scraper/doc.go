// Package scraper drives a scrape for one year or a range of years.
//
// For each year it pages through flickr.photos.search until the requested
// number of records is collected or Flickr runs out of results, parses every
// record, then hands the batch to the downloader, which stores images under
// <output>/<year>/<id>.jpg and writes <output>/<year>/metadata.csv.
//
// Years in a range are processed one after another; the first error stops
// the run.
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    return err
//	}
//	years, _ := scraper.ParseYears("2000-2021")
//	results, err := s.ScrapeYears(ctx, years)
package scraper
