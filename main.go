package main

import "github.com/matthew-spillane/VenomScan/cmd"

func main() {
	cmd.Execute()
}
