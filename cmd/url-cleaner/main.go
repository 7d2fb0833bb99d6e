// url-cleaner strips tracking parameters from URLs.
//
// Run "url-cleaner serve" to start the navigation proxy and management API,
// or use "clean" and "text" for one-off cleaning.
package main

import (
	"fmt"
	"os"

	"github.com/Extra-Chill/url-cleaner/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
