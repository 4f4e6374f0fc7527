package main

import (
	_ "git.mbbs.network/mbbs/mbbs/src/migration"
	"git.mbbs.network/mbbs/mbbs/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
