package main

import "masterdata-importer/cmd"

func main() {
	cmd.Execute()
}
