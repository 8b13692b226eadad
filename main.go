package main

import "cloud-storage/cmd"

func main() {
	cmd.Execute()
}
