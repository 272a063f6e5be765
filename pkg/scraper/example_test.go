package scraper_test

import (
	"fmt"

	"flickrscraper/pkg/scraper"
)

func ExampleParseYears() {
	years, err := scraper.ParseYears("2019-2021")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(years)

	_, err = scraper.ParseYears("2021-2019")
	fmt.Println(err != nil)
	// Output:
	// [2019 2020 2021]
	// true
}
