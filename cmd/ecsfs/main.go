package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	app := newApp(os.Stdout, s3ObjectStore)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
