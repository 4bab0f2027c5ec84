package main

import "github.com/openswoop/tritondata/cmd"

func main() {
	cmd.Execute()
}
