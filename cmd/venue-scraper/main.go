package main

import "github.com/pfrederiksen/venue-scraper/internal/cli"

func main() {
	cli.Execute()
}
