package main

import "github.com/fluxorio/ppqsort/pkg/cli"

func main() {
	cli.Execute()
}
